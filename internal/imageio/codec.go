package imageio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/discochess/extcodec/internal/colorenc"
	"github.com/discochess/extcodec/internal/pool"
)

// ErrUnsupportedFormat indicates a file extension with no staging format.
var ErrUnsupportedFormat = errors.New("imageio: unsupported format")

// JPEGQuality is the quality used for jpg staging files.
const JPEGQuality = 95

// Format identifies a staging file format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
	FormatPNM  Format = "pnm"
)

// FormatOf returns the staging format for a path or bare extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		ext = strings.ToLower(path)
	}
	switch ext {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "ppm", "pgm", "pnm":
		return FormatPNM, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Codec reads and writes staging files.
type Codec struct {
	logger *zap.Logger
}

// New returns a Codec. If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// EncodeToFile converts img to enc at the given bit depth and writes it to
// path in the format named by path's extension.
func (c *Codec) EncodeToFile(ctx context.Context, img *Image, enc colorenc.Encoding, bits int, path string, p *pool.Pool) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	conv, err := colorenc.NewConverter(img.Encoding, enc)
	if err != nil {
		return fmt.Errorf("converting to %s: %w", enc, err)
	}
	if format == FormatJPEG {
		bits = 8
	}

	pixels, err := convertPixels(ctx, img.Pixels, conv, enc.IsGray(), bits, p)
	if err != nil {
		return fmt.Errorf("converting pixels: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	switch format {
	case FormatPNG:
		err = png.Encode(w, pixels)
	case FormatJPEG:
		err = jpeg.Encode(w, pixels, &jpeg.Options{Quality: JPEGQuality})
	case FormatPNM:
		err = encodePNM(w, pixels, bits)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	c.logger.Debug("wrote staging file",
		zap.String("path", path),
		zap.String("encoding", enc.Description()),
		zap.Int("bits", bits),
	)
	return nil
}

// LoadFile decodes path. A color_space hint overrides the encoding that
// would otherwise be assumed (sRGB, or gray sRGB for single-channel files).
func (c *Codec) LoadFile(ctx context.Context, path string, hints ColorHints, p *pool.Pool) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var pixels image.Image
	bits := 0
	switch format {
	case FormatPNG:
		pixels, err = png.Decode(r)
	case FormatJPEG:
		pixels, err = jpeg.Decode(r)
	case FormatPNM:
		size := int64(-1)
		if info, serr := f.Stat(); serr == nil {
			size = info.Size()
		}
		pixels, bits, err = decodePNM(r, size)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	enc := colorenc.SRGB
	if isGray(pixels) {
		enc = colorenc.GraySRGB
	}
	if desc, ok := hints.Get(HintColorSpace); ok {
		enc, err = colorenc.ParseDescription(desc)
		if err != nil {
			return nil, fmt.Errorf("applying color hint: %w", err)
		}
	}

	img := NewImage(pixels, enc)
	if bits > 0 {
		img.Metadata.BitsPerSample = bits
	}

	c.logger.Debug("loaded staging file",
		zap.String("path", path),
		zap.String("encoding", enc.Description()),
		zap.Int("bits", img.Metadata.BitsPerSample),
	)
	return img, nil
}

// convertPixels builds a gray or RGBA image of the requested depth, one pool
// task per row.
func convertPixels(ctx context.Context, src image.Image, conv *colorenc.Converter, gray bool, bits int, p *pool.Pool) (image.Image, error) {
	b := src.Bounds()
	wide := bits > 8

	var dst image.Image
	var set func(x, y int, r, g, bl, a float64)
	switch {
	case gray && wide:
		d := image.NewGray16(b)
		set = func(x, y int, r, _, _, _ float64) { d.SetGray16(x, y, color.Gray16{Y: quantize16(r)}) }
		dst = d
	case gray:
		d := image.NewGray(b)
		set = func(x, y int, r, _, _, _ float64) { d.SetGray(x, y, color.Gray{Y: quantize8(r)}) }
		dst = d
	case wide:
		d := image.NewNRGBA64(b)
		set = func(x, y int, r, g, bl, a float64) {
			d.SetNRGBA64(x, y, color.NRGBA64{R: quantize16(r), G: quantize16(g), B: quantize16(bl), A: quantize16(a)})
		}
		dst = d
	default:
		d := image.NewNRGBA(b)
		set = func(x, y int, r, g, bl, a float64) {
			d.SetNRGBA(x, y, color.NRGBA{R: quantize8(r), G: quantize8(g), B: quantize8(bl), A: quantize8(a)})
		}
		dst = d
	}

	err := p.Run(ctx, b.Dy(), func(_ context.Context, row int) error {
		y := b.Min.Y + row
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			r, g, bl := conv.Convert(float64(c.R)/0xffff, float64(c.G)/0xffff, float64(c.B)/0xffff)
			set(x, y, r, g, bl, float64(c.A)/0xffff)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func quantize8(v float64) uint8 {
	return uint8(math.Round(clamp(v) * 0xff))
}

func quantize16(v float64) uint16 {
	return uint16(math.Round(clamp(v) * 0xffff))
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
