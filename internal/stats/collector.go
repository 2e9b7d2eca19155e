// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names reported by the codec adapter.
const (
	MetricCompressions   = "extcodec_compress_total"
	MetricDecompressions = "extcodec_decompress_total"
	MetricFailures       = "extcodec_failures_total"
	MetricCompressedSize = "extcodec_compressed_bytes"
	MetricElapsed        = "extcodec_elapsed_seconds"
	MetricSidecarTimings = "extcodec_sidecar_timings_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
