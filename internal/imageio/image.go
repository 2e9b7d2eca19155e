// Package imageio loads and stores the uncompressed staging files exchanged
// with external codec tools.
package imageio

import (
	"image"

	"github.com/discochess/extcodec/internal/colorenc"
)

// DefaultIntensityTarget is the intensity target, in nits, assumed for
// images whose container does not record one.
const DefaultIntensityTarget = 255

// HintColorSpace is the ColorHints key naming the color encoding of a file.
const HintColorSpace = "color_space"

// Metadata is image metadata not carried by pixel values.
type Metadata struct {
	// BitsPerSample is the precision of the original samples.
	BitsPerSample int
	// IntensityTarget is the luminance, in nits, of the maximum sample value.
	IntensityTarget float32
}

// Image is decoded pixels plus their color encoding and metadata.
type Image struct {
	Pixels   image.Image
	Encoding colorenc.Encoding
	Metadata Metadata
}

// NewImage wraps pixels with default metadata. Bit depth is inferred from the
// pixel type.
func NewImage(pixels image.Image, enc colorenc.Encoding) *Image {
	return &Image{
		Pixels:   pixels,
		Encoding: enc,
		Metadata: Metadata{
			BitsPerSample:   bitsOf(pixels),
			IntensityTarget: DefaultIntensityTarget,
		},
	}
}

// Bounds returns the pixel bounds.
func (img *Image) Bounds() image.Rectangle {
	return img.Pixels.Bounds()
}

// ColorHints tell a loader how to interpret a file whose container does not
// describe it fully.
type ColorHints struct {
	values map[string]string
}

// Add sets a hint, replacing any earlier value for key.
func (h *ColorHints) Add(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	h.values[key] = value
}

// Get returns the hint for key.
func (h ColorHints) Get(key string) (string, bool) {
	v, ok := h.values[key]
	return v, ok
}

// Len returns the number of hints.
func (h ColorHints) Len() int {
	return len(h.values)
}

func bitsOf(pixels image.Image) int {
	switch pixels.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return 16
	default:
		return 8
	}
}

func isGray(pixels image.Image) bool {
	switch pixels.(type) {
	case *image.Gray, *image.Gray16:
		return true
	default:
		return false
	}
}
