package analysis

import (
	"fmt"
)

// CodecComparison is a statistical comparison of two codecs' timings.
type CodecComparison struct {
	Codec1          string
	Codec2          string
	Stats1          *DescriptiveStats
	Stats2          *DescriptiveStats
	MannWhitney     *MannWhitneyResult
	EffectSize      *EffectSize
	BootstrapCI     *BootstrapResult
	Winner          string // Name of the faster codec, or "tie".
	WinnerConfident bool   // True if statistically significant.
}

// Direction selects which timings a comparison uses.
type Direction int

const (
	Compress Direction = iota
	Decompress
)

func (d Direction) String() string {
	if d == Decompress {
		return "decompress"
	}
	return "compress"
}

func (d Direction) samples(c *CodecResult) []float64 {
	if d == Decompress {
		return c.DecompressSeconds()
	}
	return c.CompressSeconds()
}

// CompareCodecs compares the timings of two codecs in one direction.
func CompareCodecs(c1, c2 *CodecResult, dir Direction, bootstrapIterations int, confidence float64) *CodecComparison {
	sample1 := dir.samples(c1)
	sample2 := dir.samples(c2)

	mw := MannWhitneyU(sample1, sample2)
	stats1 := Describe(sample1)
	stats2 := Describe(sample2)

	winner := "tie"
	switch {
	case stats1.N == 0 || stats2.N == 0:
	case stats1.Median < stats2.Median:
		winner = c1.Codec
	case stats2.Median < stats1.Median:
		winner = c2.Codec
	}

	return &CodecComparison{
		Codec1:          c1.Codec,
		Codec2:          c2.Codec,
		Stats1:          stats1,
		Stats2:          stats2,
		MannWhitney:     mw,
		EffectSize:      ComputeEffectSize(sample1, sample2),
		BootstrapCI:     BootstrapConfidenceInterval(sample1, sample2, bootstrapIterations, confidence),
		Winner:          winner,
		WinnerConfident: winner != "tie" && mw.Significant,
	}
}

// Summary returns a human-readable summary of the comparison.
func (c *CodecComparison) Summary() string {
	sig := "not statistically significant"
	if c.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", c.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"%s vs %s:\n"+
			"  %s: median=%.4fs, mean=%.4fs, std=%.4fs\n"+
			"  %s: median=%.4fs, mean=%.4fs, std=%.4fs\n"+
			"  Difference: %.4fs (%.1f%%)\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Faster: %s, %s",
		c.Codec1, c.Codec2,
		c.Codec1, c.Stats1.Median, c.Stats1.Mean, c.Stats1.StdDev,
		c.Codec2, c.Stats2.Median, c.Stats2.Mean, c.Stats2.StdDev,
		c.Stats1.Mean-c.Stats2.Mean,
		safePctDiff(c.Stats1.Mean, c.Stats2.Mean),
		c.EffectSize.CohensD, c.EffectSize.Interpretation,
		c.Winner, sig,
	)
}

func safePctDiff(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return (a - b) / b * 100
}

// CompareAll compares every other codec against baseline. It returns nil if
// baseline is not among results.
func CompareAll(results []*CodecResult, baseline string, dir Direction, bootstrapIterations int, confidence float64) []*CodecComparison {
	var base *CodecResult
	for _, r := range results {
		if r.Codec == baseline {
			base = r
			break
		}
	}
	if base == nil {
		return nil
	}

	var out []*CodecComparison
	for _, r := range results {
		if r == base {
			continue
		}
		out = append(out, CompareCodecs(base, r, dir, bootstrapIterations, confidence))
	}
	return out
}
