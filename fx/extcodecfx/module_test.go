package extcodecfx

import (
	"strings"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/extcodec"
)

func TestModule_ProvidesCodec(t *testing.T) {
	var codec *extcodec.Codec
	app := fxtest.New(t,
		fx.Supply(Config{Spec: "custom:jxl:cjxl:djxl:-d2", WorkDir: t.TempDir()}),
		fx.Supply(zap.NewNop()),
		Module,
		fx.Populate(&codec),
	)
	app.RequireStart()
	defer app.RequireStop()

	if codec == nil {
		t.Fatal("codec not provided")
	}
	if got := codec.Description(); got != "jxl:cjxl:d2" {
		t.Errorf("Description() = %q", got)
	}
	if got := codec.BaseParams().Distance; got != 2 {
		t.Errorf("Distance = %v, want 2", got)
	}
	if got := codec.Config().StagingExtension; got != "png" {
		t.Errorf("StagingExtension = %q, want png", got)
	}
}

func TestModule_IncompleteSpec(t *testing.T) {
	var codec *extcodec.Codec
	app := fx.New(
		fx.NopLogger,
		fx.Supply(Config{Spec: "jxl:cjxl"}),
		fx.Supply(zap.NewNop()),
		Module,
		fx.Populate(&codec),
	)
	err := app.Err()
	if err == nil || !strings.Contains(err.Error(), extcodec.ErrNotConfigured.Error()) {
		t.Errorf("app.Err() = %v, want ErrNotConfigured", err)
	}
}
