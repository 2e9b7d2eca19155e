package extcodec

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/extcodec/internal/colorenc"
	"github.com/discochess/extcodec/internal/imageio"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/runner"
	"github.com/discochess/extcodec/internal/stats"
)

// ImageIO writes and reads the staging files exchanged with the external
// tools.
type ImageIO interface {
	EncodeToFile(ctx context.Context, img *imageio.Image, enc colorenc.Encoding, bits int, path string, p *pool.Pool) error
	LoadFile(ctx context.Context, path string, hints imageio.ColorHints, p *pool.Pool) (*imageio.Image, error)
}

// Compile-time check that the bundled codec implements ImageIO.
var _ ImageIO = (*imageio.Codec)(nil)

// Option configures a Codec.
type Option interface {
	apply(*options)
}

// options holds the codec configuration.
type options struct {
	runner  runner.Runner
	images  ImageIO
	colors  *colorenc.Parser
	stats   stats.Collector
	logger  *zap.Logger
	tempDir string
	workDir string
	now     func() time.Time
}

// defaultOptions returns the default configuration. Collaborators that
// depend on the logger or working directory are filled in by New.
func defaultOptions() options {
	return options{
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithRunner sets how external commands are launched.
// If not set, commands are executed with os/exec in the working directory.
func WithRunner(r runner.Runner) Option {
	return optionFunc(func(o *options) {
		o.runner = r
	})
}

// WithImageIO sets the staging file reader and writer.
// If not set, the bundled png/jpg/pnm codec is used.
func WithImageIO(io ImageIO) Option {
	return optionFunc(func(o *options) {
		o.images = io
	})
}

// WithColorParser sets the parser for the colorspace override.
// If not set, a parser with the default cache size is created.
func WithColorParser(p *colorenc.Parser) Option {
	return optionFunc(func(o *options) {
		o.colors = p
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithTempDir sets where staging and encoded files are created.
// Default is os.TempDir.
func WithTempDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.tempDir = dir
	})
}

// WithWorkDir sets the directory the external tools run in. Timing
// sidecars are looked up there. Default is the process working directory.
func WithWorkDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.workDir = dir
	})
}

// WithClock replaces time.Now for wall-clock measurements.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(o *options) {
		o.now = now
	})
}
