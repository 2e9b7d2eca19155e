package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"math/bits"
	"strconv"
)

var errPNMHeader = errors.New("imageio: malformed pnm header")

// encodePNM writes binary P5 (gray) or P6 (RGB) with maxval 2^bits-1.
// Alpha is dropped.
func encodePNM(w io.Writer, pixels image.Image, depth int) error {
	if depth < 1 || depth > 16 {
		return fmt.Errorf("imageio: pnm bit depth %d out of range", depth)
	}
	maxval := 1<<depth - 1
	_, gray := pixels.(*image.Gray)
	if _, ok := pixels.(*image.Gray16); ok {
		gray = true
	}

	magic, channels := "P6", 3
	if gray {
		magic, channels = "P5", 1
	}
	b := pixels.Bounds()
	if _, err := fmt.Fprintf(w, "%s\n%d %d\n%d\n", magic, b.Dx(), b.Dy(), maxval); err != nil {
		return err
	}

	sampleBytes := 1
	if maxval > 0xff {
		sampleBytes = 2
	}
	row := make([]byte, b.Dx()*channels*sampleBytes)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(pixels.At(x, y)).(color.NRGBA64)
			samples := [3]uint16{c.R, c.G, c.B}
			for ch := 0; ch < channels; ch++ {
				v := uint32(math.Round(float64(samples[ch]) * float64(maxval) / 0xffff))
				if sampleBytes == 2 {
					row[i] = byte(v >> 8)
					row[i+1] = byte(v)
				} else {
					row[i] = byte(v)
				}
				i += sampleBytes
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// maxPNMPixels bounds the raster a staging file may declare.
const maxPNMPixels = 1 << 28

// decodePNM reads binary P5 or P6 and returns the pixels plus the bit depth
// implied by maxval. size is the number of bytes available to r, or -1 if
// unknown; the header is checked against it before any pixel memory is
// allocated.
func decodePNM(r *bufio.Reader, size int64) (image.Image, int, error) {
	magic := make([]byte, 2)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, 0, fmt.Errorf("reading pnm magic: %w", err)
	}
	var channels int
	switch string(magic) {
	case "P5":
		channels = 1
	case "P6":
		channels = 3
	default:
		return nil, 0, fmt.Errorf("%w: magic %q", errPNMHeader, magic)
	}

	var header [3]int
	for i := range header {
		v, err := readPNMInt(r)
		if err != nil {
			return nil, 0, err
		}
		header[i] = v
	}
	width, height, maxval := header[0], header[1], header[2]
	if width <= 0 || height <= 0 || maxval <= 0 || maxval > 0xffff {
		return nil, 0, fmt.Errorf("%w: %dx%d maxval %d", errPNMHeader, width, height, maxval)
	}
	if width > maxPNMPixels/height {
		return nil, 0, fmt.Errorf("%w: %dx%d exceeds %d pixels", errPNMHeader, width, height, maxPNMPixels)
	}
	sampleBytes := 1
	if maxval > 0xff {
		sampleBytes = 2
	}
	raster := int64(width) * int64(height) * int64(channels*sampleBytes)
	if size >= 0 && raster > size {
		return nil, 0, fmt.Errorf("%w: %dx%d needs %d bytes, file has %d", errPNMHeader, width, height, raster, size)
	}
	// Exactly one whitespace byte separates the header from the raster.
	if _, err := r.ReadByte(); err != nil {
		return nil, 0, fmt.Errorf("reading pnm header: %w", err)
	}

	depth := bits.Len(uint(maxval))
	rect := image.Rect(0, 0, width, height)

	var set func(x, y int, s [3]uint32)
	var img image.Image
	switch {
	case channels == 1 && depth > 8:
		g := image.NewGray16(rect)
		set = func(x, y int, s [3]uint32) { g.SetGray16(x, y, color.Gray16{Y: scale16(s[0], maxval)}) }
		img = g
	case channels == 1:
		g := image.NewGray(rect)
		set = func(x, y int, s [3]uint32) { g.SetGray(x, y, color.Gray{Y: scale8(s[0], maxval)}) }
		img = g
	case depth > 8:
		c := image.NewNRGBA64(rect)
		set = func(x, y int, s [3]uint32) {
			c.SetNRGBA64(x, y, color.NRGBA64{R: scale16(s[0], maxval), G: scale16(s[1], maxval), B: scale16(s[2], maxval), A: 0xffff})
		}
		img = c
	default:
		c := image.NewNRGBA(rect)
		set = func(x, y int, s [3]uint32) {
			c.SetNRGBA(x, y, color.NRGBA{R: scale8(s[0], maxval), G: scale8(s[1], maxval), B: scale8(s[2], maxval), A: 0xff})
		}
		img = c
	}

	row := make([]byte, width*channels*sampleBytes)
	for y := 0; y < height; y++ {
		if _, err := io.ReadFull(r, row); err != nil {
			return nil, 0, fmt.Errorf("reading pnm raster row %d: %w", y, err)
		}
		i := 0
		for x := 0; x < width; x++ {
			var s [3]uint32
			for ch := 0; ch < channels; ch++ {
				v := uint32(row[i])
				if sampleBytes == 2 {
					v = v<<8 | uint32(row[i+1])
				}
				if int(v) > maxval {
					return nil, 0, fmt.Errorf("%w: sample %d exceeds maxval %d", errPNMHeader, v, maxval)
				}
				s[ch] = v
				i += sampleBytes
			}
			set(x, y, s)
		}
	}
	return img, depth, nil
}

func scale8(v uint32, maxval int) uint8 {
	return uint8(math.Round(float64(v) * 0xff / float64(maxval)))
}

func scale16(v uint32, maxval int) uint16 {
	return uint16(math.Round(float64(v) * 0xffff / float64(maxval)))
}

const maxPNMDigits = 10

// readPNMInt skips whitespace and comments and reads a decimal integer.
func readPNMInt(r *bufio.Reader) (int, error) {
	var digits []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errPNMHeader, err)
		}
		switch {
		case b == '#' && len(digits) == 0:
			if _, err := r.ReadString('\n'); err != nil {
				return 0, fmt.Errorf("%w: unterminated comment", errPNMHeader)
			}
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if len(digits) > 0 {
				if err := r.UnreadByte(); err != nil {
					return 0, err
				}
				v, err := strconv.Atoi(string(digits))
				if err != nil {
					return 0, fmt.Errorf("%w: %v", errPNMHeader, err)
				}
				return v, nil
			}
		case b >= '0' && b <= '9':
			if len(digits) == maxPNMDigits {
				return 0, fmt.Errorf("%w: number too long", errPNMHeader)
			}
			digits = append(digits, b)
		default:
			return 0, fmt.Errorf("%w: unexpected byte %q", errPNMHeader, b)
		}
	}
}
