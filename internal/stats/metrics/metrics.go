package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the statistics module.
// Tracks refresh volume, failures, and computation latency.
type Metrics struct {
	Refreshes       prometheus.Counter
	RefreshFailures prometheus.Counter
	RefreshDuration prometheus.Histogram
}

// New creates a new Metrics instance with all statistics module metrics registered.
func New() *Metrics {
	return &Metrics{
		Refreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsearch_stats_refreshes_total",
			Help: "Total number of statistics snapshot recomputations",
		}),
		RefreshFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsearch_stats_refresh_failures_total",
			Help: "Total number of snapshot recomputations that failed and fell back",
		}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartsearch_stats_refresh_duration_seconds",
			Help:    "Duration of statistics snapshot computations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementRefresh records a completed snapshot computation.
func (m *Metrics) IncrementRefresh() {
	m.Refreshes.Inc()
}

// IncrementFailure records a computation that failed and served a fallback.
func (m *Metrics) IncrementFailure() {
	m.RefreshFailures.Inc()
}

// ObserveRefresh records the duration of a snapshot computation.
// Call with time.Now() at the start of the computation.
func (m *Metrics) ObserveRefresh(start time.Time) {
	m.RefreshDuration.Observe(time.Since(start).Seconds())
}
