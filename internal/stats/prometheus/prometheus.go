// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/extcodec/internal/stats"
)

// Histogram buckets for the codec metrics.
var (
	// ElapsedBuckets span 1ms to about 33s.
	ElapsedBuckets = prometheus.ExponentialBuckets(0.001, 2, 16)
	// SizeBuckets span 1KiB to 32MiB.
	SizeBuckets = prometheus.ExponentialBuckets(1024, 2, 16)
)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are created and registered on first use.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := lookup(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := lookup(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
// Codec metrics use ElapsedBuckets or SizeBuckets; others use the defaults.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := lookup(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		switch name {
		case stats.MetricElapsed:
			buckets = ElapsedBuckets
		case stats.MetricCompressedSize:
			buckets = SizeBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help(name), Buckets: buckets})
	})
	histogram.Observe(value)
}

// lookup returns the metric cached under name, creating and registering it
// on first use. A metric already registered elsewhere under the same name is
// reused.
func lookup[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := cache[name]; ok {
		return m
	}

	m := create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	cache[name] = m
	return m
}

func help(name string) string {
	switch name {
	case stats.MetricCompressions:
		return "Number of compress calls."
	case stats.MetricDecompressions:
		return "Number of decompress calls."
	case stats.MetricFailures:
		return "Number of failed compress or decompress calls."
	case stats.MetricCompressedSize:
		return "Size of compressed outputs in bytes."
	case stats.MetricElapsed:
		return "Reported codec run time in seconds."
	case stats.MetricSidecarTimings:
		return "Number of runs timed by a self-reported sidecar file."
	default:
		return name
	}
}
