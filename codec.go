// Package extcodec benchmarks image codecs that are only available as
// external command-line tools.
//
// A Codec is configured by positional parameters naming the encoded file
// extension, a compressor and a decompressor. Compress writes the image to a
// staging file, runs the compressor on it and returns the encoded bytes.
// Decompress writes the bytes back out, runs the decompressor and loads the
// staging file it produced.
//
// Example usage:
//
//	codec, err := extcodec.New(extcodec.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := codec.ParseSpec("jxl:cjxl:djxl:-d1"); err != nil {
//	    log.Fatal(err)
//	}
//
//	data, err := codec.Compress(ctx, "kodim01.png", img, nil, speed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%s: %d bytes\n", codec.Description(), len(data))
package extcodec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/discochess/extcodec/internal/colorenc"
	"github.com/discochess/extcodec/internal/imageio"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/runner"
	"github.com/discochess/extcodec/internal/stats"
	"github.com/discochess/extcodec/internal/tempfile"
	"github.com/discochess/extcodec/internal/timing"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotConfigured indicates fewer than three parameters were parsed.
	ErrNotConfigured = errors.New("extcodec: codec not configured")

	// ErrColorspace indicates the colorspace override could not be parsed
	// or the image could not be converted to it.
	ErrColorspace = errors.New("extcodec: colorspace override")

	// ErrEmptyOutput indicates the compressor left its output file empty.
	ErrEmptyOutput = errors.New("extcodec: compressor produced no output")
)

// Codec adapts a pair of external tools to the benchmark codec interface.
// A Codec is not safe for concurrent use.
type Codec struct {
	cfg     Config
	runner  runner.Runner
	images  ImageIO
	timer   *timing.Reporter
	colors  *colorenc.Parser
	stats   stats.Collector
	logger  *zap.Logger
	tempDir string

	stage       Stage
	template    Template
	description string
	base        BaseParams

	// savedIntensityTarget carries the source metadata from Compress to
	// Decompress, since staging formats do not record it.
	savedIntensityTarget float32
}

// New creates an unconfigured Codec. Feed it parameters with ParseParam or
// ParseSpec before compressing.
func New(cfg Config, opts ...Option) (*Codec, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	if o.colors == nil {
		p, err := colorenc.NewParser(colorenc.DefaultCacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating color parser: %w", err)
		}
		o.colors = p
	}
	if o.runner == nil {
		o.runner = runner.NewExec(
			runner.WithDir(o.workDir),
			runner.WithLogger(o.logger),
		)
	}
	if o.images == nil {
		o.images = imageio.New(o.logger)
	}

	c := &Codec{
		cfg:    cfg.withDefaults(),
		runner: o.runner,
		images: o.images,
		timer: timing.NewReporter(
			timing.WithDir(o.workDir),
			timing.WithClock(o.now),
			timing.WithLogger(o.logger),
		),
		colors:               o.colors,
		stats:                o.stats,
		logger:               o.logger,
		tempDir:              o.tempDir,
		savedIntensityTarget: imageio.DefaultIntensityTarget,
	}

	c.logger.Debug("codec initialized",
		zap.String("stagingExtension", c.cfg.StagingExtension),
		zap.String("colorspace", c.cfg.Colorspace),
		zap.Bool("quiet", c.cfg.Quiet),
	)
	return c, nil
}

// Config returns the configuration the codec was created with.
func (c *Codec) Config() Config { return c.cfg }

// Stage returns the role of the next parameter.
func (c *Codec) Stage() Stage { return c.stage }

// Configured reports whether extension, compressor and decompressor are set.
func (c *Codec) Configured() bool { return c.stage >= StageExtraArgs }

// Description names the codec, e.g. "jxl:cjxl:d1".
func (c *Codec) Description() string { return c.description }

// Template returns a copy of the positional configuration.
func (c *Codec) Template() Template {
	t := c.template
	t.ExtraArgs = slices.Clone(t.ExtraArgs)
	return t
}

// BaseParams returns the generic knobs set through the -d side channel.
func (c *Codec) BaseParams() BaseParams { return c.base }

// Compress encodes img with the compressor and returns the encoded bytes.
// filename names the source image and only seeds temporary file names.
// The elapsed time is reported to speed.
func (c *Codec) Compress(ctx context.Context, filename string, img *imageio.Image, p *pool.Pool, speed timing.Sink) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	c.stats.IncCounter(stats.MetricCompressions, 1)

	data, err := c.compress(ctx, filename, img, p, speed)
	if err != nil {
		c.stats.IncCounter(stats.MetricFailures, 1)
		return nil, err
	}

	c.stats.ObserveHistogram(stats.MetricCompressedSize, float64(len(data)))
	return data, nil
}

func (c *Codec) compress(ctx context.Context, filename string, img *imageio.Image, p *pool.Pool, speed timing.Sink) ([]byte, error) {
	base := tempfile.BaseName(filename)

	staging, err := c.newTemp(base, c.cfg.StagingExtension)
	if err != nil {
		return nil, err
	}
	defer c.release(staging)

	encoded, err := c.newTemp(base, c.template.Extension)
	if err != nil {
		return nil, err
	}
	defer c.release(encoded)

	c.savedIntensityTarget = img.Metadata.IntensityTarget

	target := img.Encoding
	if c.cfg.Colorspace != "" {
		target, err = c.colors.Parse(c.cfg.Colorspace)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrColorspace, err)
		}
		if _, err := colorenc.NewConverter(img.Encoding, target); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrColorspace, err)
		}
	}

	if err := c.images.EncodeToFile(ctx, img, target, img.Metadata.BitsPerSample, staging.Path(), p); err != nil {
		return nil, fmt.Errorf("writing staging file: %w", err)
	}

	args := append(slices.Clone(c.template.ExtraArgs), staging.Path(), encoded.Path())
	if err := c.run(ctx, c.template.CompressCommand, args, encoded.Path(), speed); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(encoded.Path())
	if err != nil {
		return nil, fmt.Errorf("reading compressed file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyOutput, encoded.Path())
	}
	return data, nil
}

// Decompress decodes compressed with the decompressor. The returned image
// carries the intensity target recorded by the last Compress, or 255.
func (c *Codec) Decompress(ctx context.Context, filename string, compressed []byte, p *pool.Pool, speed timing.Sink) (*imageio.Image, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	c.stats.IncCounter(stats.MetricDecompressions, 1)

	img, err := c.decompress(ctx, filename, compressed, p, speed)
	if err != nil {
		c.stats.IncCounter(stats.MetricFailures, 1)
		return nil, err
	}
	return img, nil
}

func (c *Codec) decompress(ctx context.Context, filename string, compressed []byte, p *pool.Pool, speed timing.Sink) (*imageio.Image, error) {
	base := tempfile.BaseName(filename)

	encoded, err := c.newTemp(base, c.template.Extension)
	if err != nil {
		return nil, err
	}
	defer c.release(encoded)

	staging, err := c.newTemp(base, c.cfg.StagingExtension)
	if err != nil {
		return nil, err
	}
	defer c.release(staging)

	if err := os.WriteFile(encoded.Path(), compressed, 0o600); err != nil {
		return nil, fmt.Errorf("writing compressed file: %w", err)
	}

	args := []string{encoded.Path(), staging.Path()}
	if err := c.run(ctx, c.template.DecompressCommand, args, staging.Path(), speed); err != nil {
		return nil, err
	}

	var hints imageio.ColorHints
	if c.cfg.Colorspace != "" {
		hints.Add(imageio.HintColorSpace, c.cfg.Colorspace)
	}
	img, err := c.images.LoadFile(ctx, staging.Path(), hints, p)
	if err != nil {
		return nil, fmt.Errorf("loading decompressed file: %w", err)
	}
	img.Metadata.IntensityTarget = c.savedIntensityTarget
	return img, nil
}

func (c *Codec) run(ctx context.Context, name string, args []string, output string, speed timing.Sink) error {
	m, err := c.timer.Run(func() error {
		return c.runner.Run(ctx, name, args, c.cfg.Quiet)
	}, output, speed)
	if err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}

	c.stats.ObserveHistogram(stats.MetricElapsed, m.Seconds)
	if m.SelfReported {
		c.stats.IncCounter(stats.MetricSidecarTimings, 1)
	}
	return nil
}

func (c *Codec) newTemp(base, ext string) (*tempfile.File, error) {
	f, err := tempfile.New(c.tempDir, base, ext)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("created temporary file", zap.String("path", f.Path()))
	return f, nil
}

func (c *Codec) release(f *tempfile.File) {
	path := f.Path()
	if err := f.Close(); err != nil {
		c.logger.Warn("failed to remove temporary file", zap.Error(err))
		return
	}
	c.logger.Debug("removed temporary file", zap.String("path", path))
}
