package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search backend Prometheus metrics.
var (
	StreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scxa",
			Name:      "stream_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"kind", "status"}, // kind: "stream" / "select"
	)

	StreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scxa",
			Name:      "stream_request_duration_seconds",
			Help:      "Time to first byte of search backend requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	StreamTuplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scxa",
			Name:      "stream_tuples_total",
			Help:      "Total tuples read from the search backend",
		},
		[]string{"kind"},
	)

	CursorPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "scxa",
			Name:      "cursor_pages_total",
			Help:      "Total cursor-mark pages fetched in all-docs mode",
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scxa",
			Name:      "result_cache_total",
			Help:      "Result cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the search backend and cache metrics. Safe
// to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(
			StreamRequestsTotal,
			StreamRequestDuration,
			StreamTuplesTotal,
			CursorPagesTotal,
			ResultCacheTotal,
		)
	})
}
