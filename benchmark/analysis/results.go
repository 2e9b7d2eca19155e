package analysis

import (
	"math"
	"sort"

	"github.com/discochess/extcodec/internal/resultlog"
)

// CodecResult is every record of one codec.
type CodecResult struct {
	Codec   string
	Records []resultlog.Record
}

// GroupByCodec splits records by codec description, preserving the order in
// which codecs first appear.
func GroupByCodec(records []resultlog.Record) []*CodecResult {
	var out []*CodecResult
	index := make(map[string]*CodecResult)
	for _, r := range records {
		cr, ok := index[r.Codec]
		if !ok {
			cr = &CodecResult{Codec: r.Codec}
			index[r.Codec] = cr
			out = append(out, cr)
		}
		cr.Records = append(cr.Records, r)
	}
	return out
}

// CompressSeconds returns every compression time of successful records.
func (c *CodecResult) CompressSeconds() []float64 {
	return c.collect(func(r resultlog.Record) []float64 { return r.CompressSeconds })
}

// DecompressSeconds returns every decompression time of successful records.
func (c *CodecResult) DecompressSeconds() []float64 {
	return c.collect(func(r resultlog.Record) []float64 { return r.DecompressSeconds })
}

// BitsPerPixel returns the per-image bits per pixel of successful records.
func (c *CodecResult) BitsPerPixel() []float64 {
	return c.collect(func(r resultlog.Record) []float64 { return []float64{r.BitsPerPixel} })
}

func (c *CodecResult) collect(f func(resultlog.Record) []float64) []float64 {
	var out []float64
	for _, r := range c.Records {
		if r.Error == "" {
			out = append(out, f(r)...)
		}
	}
	return out
}

// CodecSummary aggregates a CodecResult.
type CodecSummary struct {
	Codec    string
	Images   int
	Failures int
	Pixels   int64
	Bytes    int64
	// BitsPerPixel is total compressed bits over total pixels.
	BitsPerPixel float64
	MaxAbsDiff   float64
	// MinPSNR is the worst PSNR in dB; +Inf when every image was lossless.
	MinPSNR float64
	// CompressMPs and DecompressMPs are median throughputs in megapixels
	// per second.
	CompressMPs   float64
	DecompressMPs float64
	Compress      *DescriptiveStats
	Decompress    *DescriptiveStats
}

// Summarize aggregates c.
func Summarize(c *CodecResult) *CodecSummary {
	s := &CodecSummary{Codec: c.Codec, MinPSNR: math.Inf(1)}

	var mpCompress, mpDecompress []float64
	for _, r := range c.Records {
		if r.Error != "" {
			s.Failures++
			continue
		}
		s.Images++
		pixels := int64(r.Width) * int64(r.Height)
		s.Pixels += pixels
		s.Bytes += int64(r.CompressedBytes)
		s.MaxAbsDiff = math.Max(s.MaxAbsDiff, r.MaxAbsDiff)
		if !r.Lossless() && r.PSNR > 0 {
			s.MinPSNR = math.Min(s.MinPSNR, r.PSNR)
		}
		mp := float64(pixels) / 1e6
		for _, sec := range r.CompressSeconds {
			if sec > 0 {
				mpCompress = append(mpCompress, mp/sec)
			}
		}
		for _, sec := range r.DecompressSeconds {
			if sec > 0 {
				mpDecompress = append(mpDecompress, mp/sec)
			}
		}
	}

	if s.Pixels > 0 {
		s.BitsPerPixel = float64(s.Bytes*8) / float64(s.Pixels)
	}
	s.CompressMPs = Describe(mpCompress).Median
	s.DecompressMPs = Describe(mpDecompress).Median
	s.Compress = Describe(c.CompressSeconds())
	s.Decompress = Describe(c.DecompressSeconds())
	return s
}

// SummarizeAll summarizes each result, sorted by bits per pixel.
func SummarizeAll(results []*CodecResult) []*CodecSummary {
	out := make([]*CodecSummary, 0, len(results))
	for _, r := range results {
		out = append(out, Summarize(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BitsPerPixel < out[j].BitsPerPixel
	})
	return out
}
