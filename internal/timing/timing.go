// Package timing measures external codec invocations.
//
// Many codec tools measure their own elapsed time, excluding process launch
// and file I/O. Such a tool writes the number of seconds to a sidecar file
// named after its output file with a ".time" suffix. When that file exists
// and parses, its value is reported instead of the wall-clock measurement.
package timing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/extcodec/internal/tempfile"
)

// SidecarSuffix is appended to the output base name to form the sidecar name.
const SidecarSuffix = ".time"

// Sink receives elapsed times in seconds.
type Sink interface {
	NotifyElapsed(seconds float64)
}

// Measurement is one reported elapsed time.
type Measurement struct {
	Seconds float64
	// SelfReported is true when Seconds came from a sidecar file.
	SelfReported bool
}

// Reporter times operations and reports them to a Sink.
type Reporter struct {
	dir    string
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithDir sets the directory searched for sidecar files.
// The default is the current working directory, which is where external
// tools launched without an explicit directory write them.
func WithDir(dir string) Option {
	return func(r *Reporter) { r.dir = dir }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// NewReporter returns a Reporter.
func NewReporter(opts ...Option) *Reporter {
	r := &Reporter{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SidecarPath returns the sidecar file consulted for outputPath.
func (r *Reporter) SidecarPath(outputPath string) string {
	name := tempfile.BaseName(outputPath) + SidecarSuffix
	if r.dir == "" {
		return name
	}
	return filepath.Join(r.dir, name)
}

// Run calls fn and reports its elapsed time to sink.
// If fn fails nothing is reported. The sidecar for outputPath is consulted
// after fn returns and removed if it exists, whether or not fn succeeded.
// The reported value is returned.
func (r *Reporter) Run(fn func() error, outputPath string, sink Sink) (Measurement, error) {
	sidecar := r.SidecarPath(outputPath)
	start := r.now()
	if err := fn(); err != nil {
		r.discardSidecar(sidecar)
		return Measurement{}, err
	}
	end := r.now()

	m := Measurement{Seconds: end.Sub(start).Seconds()}
	if reported, ok := r.readSidecar(sidecar); ok {
		r.logger.Debug("using self-reported time",
			zap.String("sidecar", sidecar),
			zap.Float64("seconds", reported),
			zap.Float64("wallSeconds", m.Seconds),
		)
		m = Measurement{Seconds: reported, SelfReported: true}
	} else {
		r.logger.Debug("using wall-clock time", zap.Float64("seconds", m.Seconds))
	}

	if sink != nil {
		sink.NotifyElapsed(m.Seconds)
	}
	return m, nil
}

// discardSidecar removes a sidecar left by a failed run without reading it.
func (r *Reporter) discardSidecar(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("removing timing sidecar", zap.String("sidecar", path), zap.Error(err))
	}
}

// readSidecar parses and removes the sidecar at path.
func (r *Reporter) readSidecar(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("reading timing sidecar", zap.String("sidecar", path), zap.Error(err))
		}
		return 0, false
	}
	if err := os.Remove(path); err != nil {
		r.logger.Warn("removing timing sidecar", zap.String("sidecar", path), zap.Error(err))
	}

	seconds, err := ParseSidecar(data)
	if err != nil {
		r.logger.Warn("ignoring timing sidecar", zap.String("sidecar", path), zap.Error(err))
		return 0, false
	}
	return seconds, true
}

// ParseSidecar reads the leading number of a sidecar file's contents.
// Anything after the first whitespace-separated field is ignored.
func ParseSidecar(data []byte) (float64, error) {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, errors.New("timing: empty sidecar")
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("timing: parsing sidecar: %w", err)
	}
	return seconds, nil
}
