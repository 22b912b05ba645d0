package stats

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus feeds profiled spans into a Prometheus histogram, labeled by
// action. Nesting markers are stripped from labels to keep cardinality equal
// to the dispatch table.
//
// Unlike Memory, a single Prometheus collector is shared across requests, so
// open spans are tracked per instance; wrap it with PerRequest for each
// context.
type Prometheus struct {
	duration *prometheus.HistogramVec
}

// NewPrometheus registers the dispatch metrics on reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	return &Prometheus{
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "arbor",
				Name:      "dispatch_action_duration_seconds",
				Help:      "Time spent executing dispatch components",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"action"},
		),
	}
}

// Observe records one completed span.
func (p *Prometheus) Observe(label string, elapsed time.Duration) {
	p.duration.WithLabelValues(normalizeLabel(label)).Observe(elapsed.Seconds())
}

// PerRequest returns a fresh per-request profiler feeding this collector.
func (p *Prometheus) PerRequest() *Observer {
	return &Observer{sink: p, now: time.Now}
}

// normalizeLabel strips the indentation and arrow marker added to nested
// spans, leaving the bare action path.
func normalizeLabel(label string) string {
	label = strings.TrimLeft(label, " ")
	return strings.TrimPrefix(label, "-> ")
}

// Observer profiles a single request and forwards closed spans to a shared
// Prometheus collector. It satisfies the same contract as Memory.
type Observer struct {
	sink *Prometheus
	now  func() time.Time
	open []entry
}

// ProfileStart opens a span for label.
func (o *Observer) ProfileStart(label string) {
	o.open = append(o.open, entry{label: label, begin: o.now()})
}

// ProfileEnd closes the most recent open span for label and records it.
func (o *Observer) ProfileEnd(label string) {
	for i := len(o.open) - 1; i >= 0; i-- {
		if o.open[i].label == label && o.open[i].end.IsZero() {
			o.open[i].end = o.now()
			o.sink.Observe(label, o.open[i].end.Sub(o.open[i].begin))
			return
		}
	}
}

// Report returns "". Aggregated timings live in the metrics registry, not in
// per-request logs.
func (o *Observer) Report() string { return "" }
