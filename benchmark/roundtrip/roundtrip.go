// Package roundtrip runs images through codecs and records size, timing and
// distortion of each round trip.
package roundtrip

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/extcodec/internal/imageio"
	"github.com/discochess/extcodec/internal/pool"
	"github.com/discochess/extcodec/internal/resultlog"
	"github.com/discochess/extcodec/internal/stats"
	"github.com/discochess/extcodec/internal/timing"
)

// Codec is a benchmarked image codec.
type Codec interface {
	Description() string
	Compress(ctx context.Context, filename string, img *imageio.Image, p *pool.Pool, speed timing.Sink) ([]byte, error)
	Decompress(ctx context.Context, filename string, compressed []byte, p *pool.Pool, speed timing.Sink) (*imageio.Image, error)
}

// Image is a decoded source image.
type Image struct {
	Name  string
	Image *imageio.Image
}

// Harness runs every codec over every image.
type Harness struct {
	codecs     []Codec
	iterations int
	pool       *pool.Pool
	logger     *zap.Logger
	now        func() time.Time
}

// NewHarness creates a Harness that repeats each round trip iterations
// times. A nil logger disables logging.
func NewHarness(iterations int, p *pool.Pool, logger *zap.Logger, codecs ...Codec) *Harness {
	if iterations < 1 {
		iterations = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{
		codecs:     codecs,
		iterations: iterations,
		pool:       p,
		logger:     logger,
		now:        time.Now,
	}
}

// Run benchmarks every codec on every image and passes each record to emit.
// A failing round trip produces a record with Error set; Run only stops on
// context cancellation or an emit error.
func (h *Harness) Run(ctx context.Context, images []Image, emit func(resultlog.Record) error) error {
	for _, c := range h.codecs {
		for _, img := range images {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec := h.RunImage(ctx, c, img)
			if err := emit(rec); err != nil {
				return fmt.Errorf("emitting %s/%s: %w", rec.Codec, rec.Image, err)
			}
		}
	}
	return nil
}

// RunImage benchmarks one codec on one image.
func (h *Harness) RunImage(ctx context.Context, c Codec, img Image) resultlog.Record {
	b := img.Image.Bounds()
	rec := resultlog.Record{
		Time:   h.now().UTC(),
		Codec:  c.Description(),
		Image:  img.Name,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	log := h.logger.With(zap.String("codec", rec.Codec), zap.String("image", rec.Image))

	encSpeed, decSpeed := stats.NewSpeed(), stats.NewSpeed()
	var decoded *imageio.Image
	for i := 0; i < h.iterations; i++ {
		data, err := c.Compress(ctx, img.Name, img.Image, h.pool, encSpeed)
		if err != nil {
			return h.fail(log, rec, fmt.Errorf("compressing: %w", err))
		}
		rec.CompressedBytes = len(data)

		decoded, err = c.Decompress(ctx, img.Name, data, h.pool, decSpeed)
		if err != nil {
			return h.fail(log, rec, fmt.Errorf("decompressing: %w", err))
		}
	}
	rec.CompressSeconds = encSpeed.Samples()
	rec.DecompressSeconds = decSpeed.Samples()

	if pixels := rec.Width * rec.Height; pixels > 0 {
		rec.BitsPerPixel = float64(rec.CompressedBytes*8) / float64(pixels)
	}

	dist, err := imageio.Compare(img.Image, decoded)
	if err != nil {
		return h.fail(log, rec, fmt.Errorf("comparing: %w", err))
	}
	rec.MaxAbsDiff = dist.MaxAbsDiff
	rec.PSNR = dist.PSNR

	log.Info("round trip complete",
		zap.Int("bytes", rec.CompressedBytes),
		zap.Float64("bpp", rec.BitsPerPixel),
		zap.Float64("maxAbsDiff", rec.MaxAbsDiff),
	)
	return rec
}

func (h *Harness) fail(log *zap.Logger, rec resultlog.Record, err error) resultlog.Record {
	log.Warn("round trip failed", zap.Error(err))
	rec.Error = err.Error()
	return rec
}
