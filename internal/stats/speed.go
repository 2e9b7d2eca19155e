package stats

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Speed accumulates elapsed times of codec runs. It implements the timing
// sink consumed by the codec adapter and is safe for concurrent use.
type Speed struct {
	mu      sync.Mutex
	samples []float64
}

// NewSpeed returns an empty Speed.
func NewSpeed() *Speed {
	return &Speed{}
}

// NotifyElapsed records one elapsed time in seconds.
func (s *Speed) NotifyElapsed(seconds float64) {
	s.mu.Lock()
	s.samples = append(s.samples, seconds)
	s.mu.Unlock()
}

// Samples returns a copy of the recorded times in insertion order.
func (s *Speed) Samples() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.samples))
	copy(out, s.samples)
	return out
}

// SpeedSummary describes recorded elapsed times.
type SpeedSummary struct {
	N      int
	Min    float64
	Max    float64
	Median float64
	Mean   float64
	StdDev float64
	// GeoMean is the geometric mean of strictly positive samples.
	GeoMean float64
}

// Summary computes statistics over the recorded times.
// The zero SpeedSummary is returned when nothing was recorded.
func (s *Speed) Summary() SpeedSummary {
	samples := s.Samples()
	if len(samples) == 0 {
		return SpeedSummary{}
	}
	sort.Float64s(samples)

	sum := SpeedSummary{
		N:      len(samples),
		Min:    samples[0],
		Max:    samples[len(samples)-1],
		Median: stat.Quantile(0.5, stat.Empirical, samples, nil),
		Mean:   stat.Mean(samples, nil),
	}
	if len(samples) > 1 {
		sum.StdDev = stat.StdDev(samples, nil)
	}

	positive := samples[:0:0]
	for _, v := range samples {
		if v > 0 {
			positive = append(positive, v)
		}
	}
	if len(positive) > 0 {
		sum.GeoMean = stat.GeometricMean(positive, nil)
	}
	return sum
}

// Throughput returns megapixels per second for pixels processed per run,
// based on the median time.
func (s SpeedSummary) Throughput(pixels int) float64 {
	if s.Median <= 0 {
		return math.Inf(1)
	}
	return float64(pixels) / 1e6 / s.Median
}
