// Package extcodecfx provides an fx module for a configured custom codec.
package extcodecfx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/extcodec"
	"github.com/discochess/extcodec/internal/colorenc"
	"github.com/discochess/extcodec/internal/stats"
	"github.com/discochess/extcodec/internal/stats/zapstats"
)

// Config holds configuration for the custom codec.
type Config struct {
	// Spec names the codec as EXT:COMPRESSOR:DECOMPRESSOR[:ARG...].
	Spec string

	// Codec holds the settings shared by every custom codec.
	// The zero value uses extcodec.DefaultConfig.
	Codec extcodec.Config

	// WorkDir is where the external tools run and write timing sidecars.
	WorkDir string

	// TempDir is where staging files are created.
	TempDir string

	// ColorCacheSize bounds the parsed colorspace cache.
	// Default is colorenc.DefaultCacheSize.
	ColorCacheSize int
}

// Module provides a configured *extcodec.Codec.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("extcodec",
	fx.Provide(
		newStatsCollector,
		newColorParser,
		newCodec,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return zapstats.New(log.Named("extcodec.stats"))
}

func newColorParser(cfg Config) (*colorenc.Parser, error) {
	size := cfg.ColorCacheSize
	if size <= 0 {
		size = colorenc.DefaultCacheSize
	}
	return colorenc.NewParser(size)
}

// Params holds dependencies for creating the codec.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Colors    *colorenc.Parser
	Lifecycle fx.Lifecycle
}

// Result holds the provided codec.
type Result struct {
	fx.Out

	Codec *extcodec.Codec
}

func newCodec(p Params) (Result, error) {
	log := p.Logger.Named("extcodec")

	codec, err := extcodec.New(p.Config.Codec,
		extcodec.WithLogger(log),
		extcodec.WithStats(p.Collector),
		extcodec.WithColorParser(p.Colors),
		extcodec.WithWorkDir(p.Config.WorkDir),
		extcodec.WithTempDir(p.Config.TempDir),
	)
	if err != nil {
		return Result{}, err
	}
	if err := codec.ParseSpec(p.Config.Spec); err != nil {
		return Result{}, fmt.Errorf("parsing codec spec: %w", err)
	}
	if !codec.Configured() {
		return Result{}, fmt.Errorf("codec spec %q: %w", p.Config.Spec, extcodec.ErrNotConfigured)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("custom codec ready",
				zap.String("codec", codec.Description()),
				zap.String("stagingExtension", codec.Config().StagingExtension),
			)
			return nil
		},
	})

	return Result{Codec: codec}, nil
}
