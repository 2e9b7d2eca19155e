package imageio

import (
	"fmt"
	"image/color"
	"math"
)

// Distortion summarizes sample differences between two images.
type Distortion struct {
	// MaxAbsDiff is the largest per-sample difference in [0, 1].
	MaxAbsDiff float64
	// PSNR is the peak signal-to-noise ratio in dB; +Inf for identical images.
	PSNR float64
}

// Compare measures a against b over RGB samples. Gray images compare as RGB
// with equal channels.
func Compare(a, b *Image) (Distortion, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return Distortion{}, fmt.Errorf("imageio: size mismatch %v vs %v", ab.Size(), bb.Size())
	}

	var maxDiff, sumSq float64
	n := 0
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.NRGBA64Model.Convert(a.Pixels.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA64)
			cb := color.NRGBA64Model.Convert(b.Pixels.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA64)
			for _, d := range [3]float64{
				float64(ca.R) - float64(cb.R),
				float64(ca.G) - float64(cb.G),
				float64(ca.B) - float64(cb.B),
			} {
				d /= 0xffff
				maxDiff = math.Max(maxDiff, math.Abs(d))
				sumSq += d * d
				n++
			}
		}
	}

	dist := Distortion{MaxAbsDiff: maxDiff, PSNR: math.Inf(1)}
	if n > 0 && sumSq > 0 {
		dist.PSNR = 10 * math.Log10(float64(n)/sumSq)
	}
	return dist, nil
}
