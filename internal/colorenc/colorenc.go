// Package colorenc parses and converts color-encoding descriptions.
//
// A description names a color space, white point, primaries, rendering
// intent and transfer function joined by underscores, for example
// "RGB_D65_SRG_Rel_SRG" (sRGB) or "Gra_D65_Rel_Lin" (linear grayscale).
// A few well-known names such as "sRGB" and "DisplayP3" are accepted as
// aliases.
package colorenc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidDescription indicates a description could not be parsed.
	ErrInvalidDescription = errors.New("colorenc: invalid description")

	// ErrUnsupportedConversion indicates two encodings cannot be converted.
	ErrUnsupportedConversion = errors.New("colorenc: unsupported conversion")
)

// ColorSpace is the kind of samples an image carries.
type ColorSpace uint8

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceGray
	ColorSpaceXYB
)

// WhitePoint is the reference white.
type WhitePoint uint8

const (
	WhitePointD65 WhitePoint = iota
	WhitePointE
	WhitePointDCI
)

// Primaries are the RGB primaries. Ignored for gray.
type Primaries uint8

const (
	PrimariesSRGB Primaries = iota
	Primaries2100
	PrimariesP3
)

// Transfer is the transfer function.
type Transfer uint8

const (
	TransferSRGB Transfer = iota
	TransferLinear
	Transfer709
	TransferPQ
	TransferHLG
	TransferDCI
	TransferGamma
)

// RenderingIntent is the ICC rendering intent.
type RenderingIntent uint8

const (
	IntentPerceptual RenderingIntent = iota
	IntentRelative
	IntentSaturation
	IntentAbsolute
)

// Encoding describes how sample values map to colors.
type Encoding struct {
	ColorSpace ColorSpace
	WhitePoint WhitePoint
	Primaries  Primaries
	Transfer   Transfer
	// Gamma is the encoding exponent, used only with TransferGamma.
	Gamma  float64
	Intent RenderingIntent
}

// Well-known encodings.
var (
	SRGB       = Encoding{ColorSpace: ColorSpaceRGB, WhitePoint: WhitePointD65, Primaries: PrimariesSRGB, Transfer: TransferSRGB, Intent: IntentRelative}
	LinearSRGB = Encoding{ColorSpace: ColorSpaceRGB, WhitePoint: WhitePointD65, Primaries: PrimariesSRGB, Transfer: TransferLinear, Intent: IntentRelative}
	GraySRGB   = Encoding{ColorSpace: ColorSpaceGray, WhitePoint: WhitePointD65, Transfer: TransferSRGB, Intent: IntentRelative}
	DisplayP3  = Encoding{ColorSpace: ColorSpaceRGB, WhitePoint: WhitePointD65, Primaries: PrimariesP3, Transfer: TransferSRGB, Intent: IntentPerceptual}
	Rec2100PQ  = Encoding{ColorSpace: ColorSpaceRGB, WhitePoint: WhitePointD65, Primaries: Primaries2100, Transfer: TransferPQ, Intent: IntentRelative}
	Rec2100HLG = Encoding{ColorSpace: ColorSpaceRGB, WhitePoint: WhitePointD65, Primaries: Primaries2100, Transfer: TransferHLG, Intent: IntentRelative}
)

var aliases = map[string]Encoding{
	"sRGB":       SRGB,
	"LinearSRGB": LinearSRGB,
	"DisplayP3":  DisplayP3,
	"Rec2100PQ":  Rec2100PQ,
	"Rec2100HLG": Rec2100HLG,
}

var (
	colorSpaceNames = map[string]ColorSpace{"RGB": ColorSpaceRGB, "Gra": ColorSpaceGray, "XYB": ColorSpaceXYB}
	whitePointNames = map[string]WhitePoint{"D65": WhitePointD65, "EER": WhitePointE, "DCI": WhitePointDCI}
	primariesNames  = map[string]Primaries{"SRG": PrimariesSRGB, "202": Primaries2100, "DCI": PrimariesP3}
	intentNames     = map[string]RenderingIntent{"Per": IntentPerceptual, "Rel": IntentRelative, "Sat": IntentSaturation, "Abs": IntentAbsolute}
	transferNames   = map[string]Transfer{"SRG": TransferSRGB, "Lin": TransferLinear, "709": Transfer709, "PeQ": TransferPQ, "HLG": TransferHLG, "DCI": TransferDCI}
)

// ParseDescription parses a color-encoding description.
func ParseDescription(desc string) (Encoding, error) {
	if enc, ok := aliases[desc]; ok {
		return enc, nil
	}

	fields := strings.Split(desc, "_")
	var enc Encoding

	cs, ok := colorSpaceNames[fields[0]]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: unknown color space %q in %q", ErrInvalidDescription, fields[0], desc)
	}
	enc.ColorSpace = cs

	if cs == ColorSpaceXYB {
		if len(fields) != 2 {
			return Encoding{}, fmt.Errorf("%w: %q: want XYB_<intent>", ErrInvalidDescription, desc)
		}
		intent, ok := intentNames[fields[1]]
		if !ok {
			return Encoding{}, fmt.Errorf("%w: unknown rendering intent %q", ErrInvalidDescription, fields[1])
		}
		enc.Intent = intent
		enc.Transfer = TransferLinear
		return enc, nil
	}

	want := 5
	if cs == ColorSpaceGray {
		want = 4
	}
	if len(fields) != want {
		return Encoding{}, fmt.Errorf("%w: %q has %d fields, want %d", ErrInvalidDescription, desc, len(fields), want)
	}
	rest := fields[1:]

	wp, ok := whitePointNames[rest[0]]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: unknown white point %q", ErrInvalidDescription, rest[0])
	}
	enc.WhitePoint = wp
	rest = rest[1:]

	if cs == ColorSpaceRGB {
		pr, ok := primariesNames[rest[0]]
		if !ok {
			return Encoding{}, fmt.Errorf("%w: unknown primaries %q", ErrInvalidDescription, rest[0])
		}
		enc.Primaries = pr
		rest = rest[1:]
	}

	intent, ok := intentNames[rest[0]]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: unknown rendering intent %q", ErrInvalidDescription, rest[0])
	}
	enc.Intent = intent

	tf := rest[1]
	if strings.HasPrefix(tf, "g") {
		gamma, err := strconv.ParseFloat(tf[1:], 64)
		if err != nil || gamma <= 0 || gamma > 1 {
			return Encoding{}, fmt.Errorf("%w: invalid gamma %q", ErrInvalidDescription, tf)
		}
		enc.Transfer = TransferGamma
		enc.Gamma = gamma
		return enc, nil
	}
	t, ok := transferNames[tf]
	if !ok {
		return Encoding{}, fmt.Errorf("%w: unknown transfer function %q", ErrInvalidDescription, tf)
	}
	enc.Transfer = t
	return enc, nil
}

// Description formats e in the form accepted by ParseDescription.
func (e Encoding) Description() string {
	intent := nameOf(intentNames, e.Intent)
	if e.ColorSpace == ColorSpaceXYB {
		return "XYB_" + intent
	}

	parts := []string{nameOf(colorSpaceNames, e.ColorSpace), nameOf(whitePointNames, e.WhitePoint)}
	if e.ColorSpace == ColorSpaceRGB {
		parts = append(parts, nameOf(primariesNames, e.Primaries))
	}
	parts = append(parts, intent)
	if e.Transfer == TransferGamma {
		parts = append(parts, "g"+strconv.FormatFloat(e.Gamma, 'f', -1, 64))
	} else {
		parts = append(parts, nameOf(transferNames, e.Transfer))
	}
	return strings.Join(parts, "_")
}

// String implements fmt.Stringer.
func (e Encoding) String() string {
	return e.Description()
}

// IsGray reports whether e has a single channel.
func (e Encoding) IsGray() bool {
	return e.ColorSpace == ColorSpaceGray
}

// Equal reports whether two encodings describe the same mapping.
// Gamma is compared only for gamma transfer functions, and primaries only for RGB.
func (e Encoding) Equal(o Encoding) bool {
	if e.ColorSpace != o.ColorSpace || e.Intent != o.Intent {
		return false
	}
	if e.ColorSpace == ColorSpaceXYB {
		return true
	}
	if e.WhitePoint != o.WhitePoint || e.Transfer != o.Transfer {
		return false
	}
	if e.ColorSpace == ColorSpaceRGB && e.Primaries != o.Primaries {
		return false
	}
	return e.Transfer != TransferGamma || e.Gamma == o.Gamma
}

func nameOf[T comparable](names map[string]T, v T) string {
	for name, candidate := range names {
		if candidate == v {
			return name
		}
	}
	return "?"
}
