package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/extcodec"
	"github.com/discochess/extcodec/internal/imageio"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/stats"
)

var (
	// Global flags.
	cfg     = extcodec.DefaultConfig()
	verbose bool
	workDir string
	tempDir string
	workers int
)

var rootCmd = &cobra.Command{
	Use:   "extcodec",
	Short: "Benchmark image codecs implemented by external programs",
	Long: `extcodec drives a pair of external compress/decompress programs as an
image codec and measures size, speed and distortion.

A codec is named by a colon-separated spec:

  EXTENSION:COMPRESSOR:DECOMPRESSOR[:EXTRA_ARG...]

The compressor is run as "COMPRESSOR EXTRA_ARG... staging.png encoded.EXT" and
the decompressor as "DECOMPRESSOR encoded.EXT staging.png". A tool that writes
its own elapsed seconds to "<encoded base name>.time" in the working directory
is timed by that value instead of wall-clock time.

Examples:
  # Benchmark cjxl at distance 1 against cwebp on two images
  extcodec run --codec jxl:cjxl:djxl:-d:1 --codec webp:cwebp:dwebp:-q:90 a.png b.png

  # Compress a single file
  extcodec compress --codec jxl:cjxl:djxl kodim01.png kodim01.jxl`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	cfg.AddFlags(flags)
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&workDir, "work-dir", "", "directory the external tools run in (default: current directory)")
	flags.StringVar(&tempDir, "temp-dir", "", "directory for staging files (default: system temp directory)")
	flags.IntVar(&workers, "workers", 0, "pixel conversion workers (default: GOMAXPROCS)")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newCodec(spec string, logger *zap.Logger, collector stats.Collector) (*extcodec.Codec, error) {
	c, err := extcodec.New(cfg,
		extcodec.WithLogger(logger),
		extcodec.WithStats(collector),
		extcodec.WithWorkDir(workDir),
		extcodec.WithTempDir(tempDir),
	)
	if err != nil {
		return nil, fmt.Errorf("creating codec: %w", err)
	}
	if err := c.ParseSpec(spec); err != nil {
		return nil, fmt.Errorf("codec %q: %w", spec, err)
	}
	if !c.Configured() {
		return nil, fmt.Errorf("codec %q: want EXTENSION:COMPRESSOR:DECOMPRESSOR[:ARG...]", spec)
	}
	return c, nil
}

func loadImage(ctx context.Context, path string, logger *zap.Logger, p *pool.Pool) (*imageio.Image, error) {
	img, err := imageio.New(logger).LoadFile(ctx, path, imageio.ColorHints{}, p)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return img, nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
