package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Indexing Prometheus metrics.
var (
	ItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursesearch",
			Name:      "indexer_items_total",
			Help:      "Content items seen by the indexer, by outcome",
		},
		[]string{"outcome"}, // submitted, incomplete, unsupported, failed
	)

	ExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursesearch",
			Name:      "extraction_failures_total",
			Help:      "Recoverable content extraction failures",
		},
		[]string{"kind", "field"},
	)

	CourseNameLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursesearch",
			Name:      "course_name_lookups_total",
			Help:      "Course name cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coursesearch",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	RetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursesearch",
			Name:      "retries_total",
			Help:      "Retried calls to external systems",
		},
		[]string{"target"},
	)
)

var registerOnce sync.Once

// Register registers the indexing metrics with the default registry. Safe
// to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ItemsTotal)
		prometheus.MustRegister(ExtractionFailuresTotal)
		prometheus.MustRegister(CourseNameLookupsTotal)
		prometheus.MustRegister(EngineRequestDuration)
		prometheus.MustRegister(RetriesTotal)
	})
}
