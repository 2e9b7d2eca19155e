package extcodec

import (
	"errors"
	"slices"
	"testing"
)

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := New(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestParseParam_Stages(t *testing.T) {
	c := newTestCodec(t)

	steps := []struct {
		param string
		stage Stage
		desc  string
	}{
		{"jxl", StageCompressCommand, "jxl"},
		{"/usr/local/bin/cjxl", StageDecompressCommand, "jxl:cjxl"},
		{"djxl", StageExtraArgs, "jxl:cjxl"},
		{"--effort", StageExtraArgs, "jxl:cjxl:effort"},
		{"7", StageExtraArgs, "jxl:cjxl:effort:7"},
	}
	for _, s := range steps {
		if err := c.ParseParam(s.param); err != nil {
			t.Fatalf("ParseParam(%q) error = %v", s.param, err)
		}
		if c.Stage() != s.stage {
			t.Errorf("after %q Stage() = %v, want %v", s.param, c.Stage(), s.stage)
		}
		if c.Description() != s.desc {
			t.Errorf("after %q Description() = %q, want %q", s.param, c.Description(), s.desc)
		}
	}

	tmpl := c.Template()
	if tmpl.Extension != "jxl" || tmpl.CompressCommand != "/usr/local/bin/cjxl" || tmpl.DecompressCommand != "djxl" {
		t.Errorf("Template() = %+v", tmpl)
	}
	if want := []string{"--effort", "7"}; !slices.Equal(tmpl.ExtraArgs, want) {
		t.Errorf("ExtraArgs = %v, want %v", tmpl.ExtraArgs, want)
	}
}

func TestParseParam_Configured(t *testing.T) {
	c := newTestCodec(t)
	for i, p := range []string{"jpg", "cjpeg", "djpeg"} {
		if c.Configured() {
			t.Fatalf("Configured() = true after %d params", i)
		}
		if err := c.ParseParam(p); err != nil {
			t.Fatalf("ParseParam(%q) error = %v", p, err)
		}
	}
	if !c.Configured() {
		t.Error("Configured() = false after 3 params")
	}
}

func TestParseParam_DescriptionDashes(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"--quality", "quality"},
		{"-q", "-q"},
		{"--", "--"},
		{"-qq", "qq"},
		{"80", "80"},
		{"-", "-"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			c := newTestCodec(t)
			if err := c.ParseSpec("jpg:cjpeg:djpeg"); err != nil {
				t.Fatalf("ParseSpec() error = %v", err)
			}
			if err := c.ParseParam(tt.param); err != nil {
				t.Fatalf("ParseParam(%q) error = %v", tt.param, err)
			}
			if want := "jpg:cjpeg:" + tt.want; c.Description() != want {
				t.Errorf("Description() = %q, want %q", c.Description(), want)
			}
		})
	}
}

func TestParseParam_DistanceSideChannel(t *testing.T) {
	c := newTestCodec(t)
	if err := c.ParseSpec("jxl:cjxl:djxl:-d1.5:-x"); err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}

	if got := c.BaseParams().Distance; got != 1.5 {
		t.Errorf("Distance = %v, want 1.5", got)
	}
	if want := []string{"-d1.5", "-x"}; !slices.Equal(c.Template().ExtraArgs, want) {
		t.Errorf("ExtraArgs = %v, want %v", c.Template().ExtraArgs, want)
	}
	if want := "jxl:cjxl:d1.5:-x"; c.Description() != want {
		t.Errorf("Description() = %q, want %q", c.Description(), want)
	}
}

func TestParseParam_DistanceSideChannelInvalid(t *testing.T) {
	c := newTestCodec(t)
	if err := c.ParseSpec("jxl:cjxl:djxl"); err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}

	err := c.ParseParam("-dfast")
	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("ParseParam() error = %v, want ErrInvalidParam", err)
	}
	if n := len(c.Template().ExtraArgs); n != 0 {
		t.Errorf("ExtraArgs has %d entries after failed parse", n)
	}
}

func TestParseParam_ShortDashDIsNotForwarded(t *testing.T) {
	c := newTestCodec(t)
	if err := c.ParseSpec("jxl:cjxl:djxl:-d"); err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}
	if got := c.BaseParams(); got != (BaseParams{}) {
		t.Errorf("BaseParams() = %+v, want zero", got)
	}
}

func TestParseSpec_SkipsCustomSelector(t *testing.T) {
	c := newTestCodec(t)
	if err := c.ParseSpec("custom:png:optipng:cp"); err != nil {
		t.Fatalf("ParseSpec() error = %v", err)
	}
	if c.Template().Extension != "png" {
		t.Errorf("Extension = %q, want png", c.Template().Extension)
	}
	if !c.Configured() {
		t.Error("Configured() = false")
	}
}

func TestParseParam_ExtensionResetsDescription(t *testing.T) {
	c := newTestCodec(t)
	if err := c.ParseParam("webp"); err != nil {
		t.Fatal(err)
	}
	if c.Description() != "webp" {
		t.Errorf("Description() = %q, want webp", c.Description())
	}
}

func TestBaseParams_ParseParam(t *testing.T) {
	tests := []struct {
		param   string
		want    BaseParams
		wantErr bool
	}{
		{"q90", BaseParams{Quality: 90}, false},
		{"d0.5", BaseParams{Distance: 0.5}, false},
		{"r1.25", BaseParams{Bitrate: 1.25}, false},
		{"x3", BaseParams{}, true},
		{"d", BaseParams{}, true},
		{"dabc", BaseParams{}, true},
		{"", BaseParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			var b BaseParams
			err := b.ParseParam(tt.param)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseParam(%q) error = %v, wantErr %v", tt.param, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParam) {
				t.Errorf("ParseParam(%q) error = %v, want ErrInvalidParam", tt.param, err)
			}
			if b != tt.want {
				t.Errorf("ParseParam(%q) = %+v, want %+v", tt.param, b, tt.want)
			}
		})
	}
}

func TestStage_String(t *testing.T) {
	if got := StageExtraArgs.String(); got != "extra-args" {
		t.Errorf("String() = %q", got)
	}
	if got := Stage(9).String(); got != "Stage(9)" {
		t.Errorf("String() = %q", got)
	}
}
