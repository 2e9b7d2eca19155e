package imageio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/discochess/extcodec/internal/colorenc"
	"github.com/discochess/extcodec/internal/pool"
)

func gradientRGB(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: uint8((x + y) * 8), A: 0xff})
		}
	}
	return img
}

func gradientGray16(w, h int) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(x*4099 + y*257)})
		}
	}
	return img
}

func TestCodec_RoundTripLossless(t *testing.T) {
	tests := []struct {
		name   string
		ext    string
		pixels image.Image
		enc    colorenc.Encoding
		bits   int
	}{
		{name: "png rgb8", ext: "png", pixels: gradientRGB(16, 8), enc: colorenc.SRGB, bits: 8},
		{name: "png gray16", ext: "png", pixels: gradientGray16(16, 8), enc: colorenc.GraySRGB, bits: 16},
		{name: "ppm rgb8", ext: "ppm", pixels: gradientRGB(16, 8), enc: colorenc.SRGB, bits: 8},
		{name: "pgm gray16", ext: "pgm", pixels: gradientGray16(16, 8), enc: colorenc.GraySRGB, bits: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "staging."+tt.ext)
			img := NewImage(tt.pixels, tt.enc)

			if err := c.EncodeToFile(ctx, img, tt.enc, tt.bits, path, pool.New(2)); err != nil {
				t.Fatalf("EncodeToFile() error = %v", err)
			}
			got, err := c.LoadFile(ctx, path, ColorHints{}, nil)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}

			dist, err := Compare(img, got)
			if err != nil {
				t.Fatalf("Compare() error = %v", err)
			}
			if dist.MaxAbsDiff != 0 {
				t.Errorf("MaxAbsDiff = %v, want 0", dist.MaxAbsDiff)
			}
			if !math.IsInf(dist.PSNR, 1) {
				t.Errorf("PSNR = %v, want +Inf", dist.PSNR)
			}
			if got.Metadata.BitsPerSample != tt.bits {
				t.Errorf("BitsPerSample = %d, want %d", got.Metadata.BitsPerSample, tt.bits)
			}
			if !got.Encoding.Equal(tt.enc) {
				t.Errorf("Encoding = %s, want %s", got.Encoding, tt.enc)
			}
			if got.Metadata.IntensityTarget != DefaultIntensityTarget {
				t.Errorf("IntensityTarget = %v, want %v", got.Metadata.IntensityTarget, DefaultIntensityTarget)
			}
		})
	}
}

func TestCodec_JPEGIsClose(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "staging.jpg")
	img := NewImage(gradientRGB(16, 16), colorenc.SRGB)

	if err := c.EncodeToFile(ctx, img, colorenc.SRGB, 16, path, nil); err != nil {
		t.Fatalf("EncodeToFile() error = %v", err)
	}
	got, err := c.LoadFile(ctx, path, ColorHints{}, nil)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	dist, err := Compare(img, got)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if dist.PSNR < 30 {
		t.Errorf("PSNR = %.1f dB, want >= 30", dist.PSNR)
	}
}

func TestCodec_EncodeConvertsColorspace(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	dir := t.TempDir()
	img := NewImage(gradientRGB(8, 8), colorenc.SRGB)

	srgbPath := filepath.Join(dir, "srgb.png")
	linPath := filepath.Join(dir, "linear.png")
	if err := c.EncodeToFile(ctx, img, colorenc.SRGB, 16, srgbPath, nil); err != nil {
		t.Fatalf("EncodeToFile(sRGB) error = %v", err)
	}
	if err := c.EncodeToFile(ctx, img, colorenc.LinearSRGB, 16, linPath, nil); err != nil {
		t.Fatalf("EncodeToFile(linear) error = %v", err)
	}

	srgbBytes, _ := os.ReadFile(srgbPath)
	linBytes, _ := os.ReadFile(linPath)
	if bytes.Equal(srgbBytes, linBytes) {
		t.Fatal("linear staging file identical to sRGB staging file")
	}

	var hints ColorHints
	hints.Add(HintColorSpace, colorenc.LinearSRGB.Description())
	got, err := c.LoadFile(ctx, linPath, hints, nil)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !got.Encoding.Equal(colorenc.LinearSRGB) {
		t.Errorf("Encoding = %s, want %s", got.Encoding, colorenc.LinearSRGB)
	}

	// Converting back to sRGB through the hinted encoding restores the samples.
	back := filepath.Join(dir, "back.png")
	if err := c.EncodeToFile(ctx, got, colorenc.SRGB, 8, back, nil); err != nil {
		t.Fatalf("EncodeToFile(back) error = %v", err)
	}
	restored, err := c.LoadFile(ctx, back, ColorHints{}, nil)
	if err != nil {
		t.Fatalf("LoadFile(back) error = %v", err)
	}
	dist, err := Compare(img, restored)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if dist.MaxAbsDiff > 1.5/255 {
		t.Errorf("MaxAbsDiff = %v, want <= 1/255", dist.MaxAbsDiff)
	}
}

func TestCodec_EncodeUnsupportedConversion(t *testing.T) {
	c := New(nil)
	img := NewImage(gradientRGB(4, 4), colorenc.SRGB)
	path := filepath.Join(t.TempDir(), "x.png")

	err := c.EncodeToFile(context.Background(), img, colorenc.Rec2100PQ, 16, path, nil)
	if !errors.Is(err, colorenc.ErrUnsupportedConversion) {
		t.Errorf("EncodeToFile() error = %v, want ErrUnsupportedConversion", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("staging file written despite conversion failure")
	}
}

func TestCodec_LoadInvalidHint(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "x.png")
	if err := c.EncodeToFile(ctx, NewImage(gradientRGB(4, 4), colorenc.SRGB), colorenc.SRGB, 8, path, nil); err != nil {
		t.Fatalf("EncodeToFile() error = %v", err)
	}

	var hints ColorHints
	hints.Add(HintColorSpace, "nonsense")
	if _, err := c.LoadFile(ctx, path, hints, nil); !errors.Is(err, colorenc.ErrInvalidDescription) {
		t.Errorf("LoadFile() error = %v, want ErrInvalidDescription", err)
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "a.png", want: FormatPNG},
		{in: "png", want: FormatPNG},
		{in: "/x/y.JPEG", want: FormatJPEG},
		{in: "ppm", want: FormatPNM},
		{in: "b.pgm", want: FormatPNM},
		{in: "c.webp", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatOf(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("FormatOf() error = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatOf() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FormatOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePNM_TenBit(t *testing.T) {
	data := []byte("P5\n# comment\n2 1\n1023\n\x03\xff\x00\x00")
	img, depth, err := decodePNM(bufio.NewReader(bytes.NewReader(data)), int64(len(data)))
	if err != nil {
		t.Fatalf("decodePNM() error = %v", err)
	}
	if depth != 10 {
		t.Errorf("depth = %d, want 10", depth)
	}
	g := img.(*image.Gray16)
	if got := g.Gray16At(0, 0).Y; got != 0xffff {
		t.Errorf("sample 0 = %d, want 65535", got)
	}
	if got := g.Gray16At(1, 0).Y; got != 0 {
		t.Errorf("sample 1 = %d, want 0", got)
	}
}

func TestDecodePNM_Malformed(t *testing.T) {
	for name, data := range map[string]string{
		"bad magic":   "P3\n1 1\n255\n0",
		"zero width":  "P5\n0 1\n255\n",
		"big maxval":  "P5\n1 1\n70000\n\x00\x00",
		"short data":  "P6\n2 2\n255\n\x00",
		"junk header": "P5\nx 1\n255\n",
		"huge":        "P5\n4000000000 4000000000\n255\n\x00",
		"too many":    "P6\n65536 65536\n255\n\x00",
		"long number": "P5\n12345678901 1\n255\n\x00",
		"past eof":    "P6\n1000 1000\n255\n\x00\x00\x00",
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := decodePNM(bufio.NewReader(bytes.NewReader([]byte(data))), int64(len(data))); err == nil {
				t.Error("decodePNM() error = nil, want error")
			}
		})
	}
}

func TestDecodePNM_UnknownSize(t *testing.T) {
	data := "P6\n1000 1000\n255\n\x00\x00\x00"
	if _, _, err := decodePNM(bufio.NewReader(bytes.NewReader([]byte(data))), -1); err == nil {
		t.Error("decodePNM() error = nil for a truncated raster")
	}
}

func TestDecodePNM_RoundsEightBit(t *testing.T) {
	data := []byte("P5\n4 1\n100\n\x00\x01\x32\x64")
	img, depth, err := decodePNM(bufio.NewReader(bytes.NewReader(data)), int64(len(data)))
	if err != nil {
		t.Fatalf("decodePNM() error = %v", err)
	}
	if depth != 7 {
		t.Errorf("depth = %d, want 7", depth)
	}
	g := img.(*image.Gray)
	for x, want := range []uint8{0, 3, 128, 255} {
		if got := g.GrayAt(x, 0).Y; got != want {
			t.Errorf("sample %d = %d, want %d", x, got, want)
		}
	}
}

func TestCodec_LoadOversizedPNM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huge.pgm")
	if err := os.WriteFile(path, []byte("P5\n4000000000 4000000000\n255\n\x00"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := New(nil).LoadFile(context.Background(), path, ColorHints{}, nil)
	if !errors.Is(err, errPNMHeader) {
		t.Errorf("LoadFile() error = %v, want errPNMHeader", err)
	}
}
