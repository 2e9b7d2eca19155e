package colorenc

import (
	"fmt"
	"math"
)

// Converter maps normalized samples from one encoding to another.
type Converter struct {
	src, dst Encoding
	identity bool
	luma     [3]float64
}

// NewConverter returns a converter from src to dst.
//
// Supported: transfer changes among sRGB, linear, BT.709, DCI and pure gamma
// curves, RGB to gray using the source primaries' luma weights, and gray to
// RGB. White point and primaries must otherwise match, and PQ or HLG content
// converts only to itself.
func NewConverter(src, dst Encoding) (*Converter, error) {
	c := &Converter{src: src, dst: dst}
	if src.Equal(dst) {
		c.identity = true
		return c, nil
	}
	if src.ColorSpace == ColorSpaceXYB || dst.ColorSpace == ColorSpaceXYB {
		return nil, fmt.Errorf("%w: %s to %s: XYB", ErrUnsupportedConversion, src, dst)
	}
	if src.WhitePoint != dst.WhitePoint {
		return nil, fmt.Errorf("%w: %s to %s: white point differs", ErrUnsupportedConversion, src, dst)
	}
	if src.ColorSpace == ColorSpaceRGB && dst.ColorSpace == ColorSpaceRGB && src.Primaries != dst.Primaries {
		return nil, fmt.Errorf("%w: %s to %s: primaries differ", ErrUnsupportedConversion, src, dst)
	}
	if src.Transfer != dst.Transfer && (!invertible(src.Transfer) || !invertible(dst.Transfer)) {
		return nil, fmt.Errorf("%w: %s to %s: transfer function", ErrUnsupportedConversion, src, dst)
	}
	c.luma = lumaWeights(src.Primaries)
	return c, nil
}

// Identity reports whether the conversion leaves samples unchanged.
func (c *Converter) Identity() bool {
	return c.identity
}

// Convert maps one pixel. Inputs and outputs are in [0, 1]. Gray sources
// read only r; gray destinations return the gray value in all three outputs.
func (c *Converter) Convert(r, g, b float64) (float64, float64, float64) {
	if c.identity {
		return r, g, b
	}
	if c.src.ColorSpace == ColorSpaceGray {
		g, b = r, r
	}
	r, g, b = toLinear(c.src, r), toLinear(c.src, g), toLinear(c.src, b)
	if c.dst.ColorSpace == ColorSpaceGray && c.src.ColorSpace != ColorSpaceGray {
		y := c.luma[0]*r + c.luma[1]*g + c.luma[2]*b
		r, g, b = y, y, y
	}
	return fromLinear(c.dst, r), fromLinear(c.dst, g), fromLinear(c.dst, b)
}

func invertible(t Transfer) bool {
	switch t {
	case TransferSRGB, TransferLinear, Transfer709, TransferDCI, TransferGamma:
		return true
	}
	return false
}

func lumaWeights(p Primaries) [3]float64 {
	switch p {
	case Primaries2100:
		return [3]float64{0.2627, 0.6780, 0.0593}
	case PrimariesP3:
		return [3]float64{0.2290, 0.6917, 0.0793}
	default:
		return [3]float64{0.2126, 0.7152, 0.0722}
	}
}

func toLinear(e Encoding, v float64) float64 {
	v = clamp01(v)
	switch e.Transfer {
	case TransferSRGB:
		if v <= 0.04045 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	case Transfer709:
		if v < 0.081 {
			return v / 4.5
		}
		return math.Pow((v+0.099)/1.099, 1/0.45)
	case TransferDCI:
		return math.Pow(v, 2.6)
	case TransferGamma:
		return math.Pow(v, 1/e.Gamma)
	default:
		return v
	}
}

func fromLinear(e Encoding, v float64) float64 {
	v = clamp01(v)
	switch e.Transfer {
	case TransferSRGB:
		if v <= 0.0031308 {
			return v * 12.92
		}
		return 1.055*math.Pow(v, 1/2.4) - 0.055
	case Transfer709:
		if v < 0.018 {
			return v * 4.5
		}
		return 1.099*math.Pow(v, 0.45) - 0.099
	case TransferDCI:
		return math.Pow(v, 1/2.6)
	case TransferGamma:
		return math.Pow(v, e.Gamma)
	default:
		return v
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
