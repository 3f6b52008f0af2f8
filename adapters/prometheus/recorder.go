package prometheus

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/goliatone/go-brevo/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Labels carried by every series. Tags outside this set are dropped and
// missing ones are exported empty.
var labelNames = []string{"operation", "status", "object_type", "method"}

var durationBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 15000}

// Recorder implements core.MetricsRecorder on a private registry. Series
// are created on first use from the recorded name.
type Recorder struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		registry:   prometheus.NewRegistry(),
		counters:   map[string]*prometheus.CounterVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	if r == nil || value < 0 {
		return
	}
	counter := r.counter(metricName(name))
	if counter == nil {
		return
	}
	counter.WithLabelValues(labelValues(tags)...).Add(float64(value))
}

func (r *Recorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	if r == nil {
		return
	}
	histogram := r.histogram(metricName(name))
	if histogram == nil {
		return
	}
	histogram.WithLabelValues(labelValues(tags)...).Observe(value)
}

func (r *Recorder) counter(name string) *prometheus.CounterVec {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.counters[name]; ok {
		return existing
	}
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: "Brevo connector operation counter " + name,
	}, labelNames)
	if err := r.registry.Register(counter); err != nil {
		return nil
	}
	r.counters[name] = counter
	return counter
}

func (r *Recorder) histogram(name string) *prometheus.HistogramVec {
	if name == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.histograms[name]; ok {
		return existing
	}
	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    "Brevo connector operation duration " + name,
		Buckets: durationBuckets,
	}, labelNames)
	if err := r.registry.Register(histogram); err != nil {
		return nil
	}
	r.histograms[name] = histogram
	return histogram
}

// metricName turns "brevo.gateway.get.total" into "brevo_gateway_get_total".
func metricName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, ch := range name {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') || ch == '_' {
			b.WriteRune(ch)
			continue
		}
		b.WriteRune('_')
	}
	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

func labelValues(tags map[string]string) []string {
	values := make([]string, len(labelNames))
	for i, label := range labelNames {
		values[i] = strings.TrimSpace(tags[label])
	}
	return values
}

var _ core.MetricsRecorder = (*Recorder)(nil)
