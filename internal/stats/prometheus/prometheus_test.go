package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/discochess/extcodec/internal/stats"
)

// gather returns the metric family with the given name, failing if absent.
func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			if len(mf.GetMetric()) == 0 {
				t.Fatalf("%s has no metrics", name)
			}
			return mf
		}
	}
	t.Fatalf("%s not found in registry", name)
	return nil
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry != prometheus.DefaultRegisterer {
		t.Error("registry should default to prometheus.DefaultRegisterer")
	}
}

func TestCollector_IncCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricCompressions, 5)
	c.IncCounter(stats.MetricCompressions, 3)

	mf := gather(t, reg, stats.MetricCompressions)
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 8 {
		t.Errorf("counter value = %v, want 8", got)
	}
	if got := mf.GetHelp(); got != "Number of compress calls." {
		t.Errorf("help = %q", got)
	}
}

func TestCollector_SetGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.SetGauge("test_gauge", 42)

	mf := gather(t, reg, "test_gauge")
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 42 {
		t.Errorf("gauge value = %v, want 42", got)
	}
}

func TestCollector_ObserveHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveHistogram(stats.MetricElapsed, 0.002)
	c.ObserveHistogram(stats.MetricElapsed, 0.5)
	c.ObserveHistogram(stats.MetricCompressedSize, 53211)
	c.ObserveHistogram("other_histogram", 1)

	h := gather(t, reg, stats.MetricElapsed).GetMetric()[0].GetHistogram()
	if got := h.GetSampleCount(); got != 2 {
		t.Errorf("histogram count = %v, want 2", got)
	}
	if got := len(h.GetBucket()); got != len(ElapsedBuckets) {
		t.Errorf("elapsed histogram has %d buckets, want %d", got, len(ElapsedBuckets))
	}

	size := gather(t, reg, stats.MetricCompressedSize).GetMetric()[0].GetHistogram()
	if got := len(size.GetBucket()); got != len(SizeBuckets) {
		t.Errorf("size histogram has %d buckets, want %d", got, len(SizeBuckets))
	}

	other := gather(t, reg, "other_histogram").GetMetric()[0].GetHistogram()
	if got := len(other.GetBucket()); got != len(prometheus.DefBuckets) {
		t.Errorf("other histogram has %d buckets, want %d", got, len(prometheus.DefBuckets))
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncCounter("concurrent_counter", 1)
				c.SetGauge("concurrent_gauge", int64(j))
				c.ObserveHistogram("concurrent_histogram", float64(j))
			}
		}()
	}
	wg.Wait()

	if got := gather(t, reg, "concurrent_counter").GetMetric()[0].GetCounter().GetValue(); got != 1000 {
		t.Errorf("counter value = %v, want 1000", got)
	}
	if got := gather(t, reg, "concurrent_histogram").GetMetric()[0].GetHistogram().GetSampleCount(); got != 1000 {
		t.Errorf("histogram count = %v, want 1000", got)
	}
	gather(t, reg, "concurrent_gauge")
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preexisting_counter",
		Help: "preexisting_counter",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter("preexisting_counter", 5)

	if got := gather(t, reg, "preexisting_counter").GetMetric()[0].GetCounter().GetValue(); got != 105 {
		t.Errorf("counter value = %v, want 105", got)
	}
}
