package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the search module.
// Tracks search volume per result type and search latency.
type Metrics struct {
	Searches       *prometheus.CounterVec
	SearchFailures prometheus.Counter
	SearchDuration prometheus.Histogram
}

// New creates a new Metrics instance with all search module metrics registered.
func New() *Metrics {
	return &Metrics{
		Searches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartsearch_searches_total",
			Help: "Total number of searches executed, by result type",
		}, []string{"result_type"}),
		SearchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "smartsearch_search_failures_total",
			Help: "Total number of searches that failed against the record source",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "smartsearch_search_duration_seconds",
			Help:    "Duration of search operations end to end",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementSearch records a completed search with its result type.
func (m *Metrics) IncrementSearch(resultType string) {
	m.Searches.WithLabelValues(resultType).Inc()
}

// IncrementFailure records a search that could not be executed.
func (m *Metrics) IncrementFailure() {
	m.SearchFailures.Inc()
}

// ObserveSearch records the duration of a search operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSearch(start time.Time) {
	m.SearchDuration.Observe(time.Since(start).Seconds())
}
