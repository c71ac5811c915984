// Package observability exposes Prometheus metrics for the service.
package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamPageLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_page_latency_seconds",
			Help:    "Latency of individual upstream feature-service calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"endpoint"},
	)

	upstreamPagesPerQuery = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_pages_per_query",
			Help:    "Number of pages fetched to satisfy one spatial query.",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 10},
		},
	)

	upstreamRecordsPerQuery = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_records_per_query",
			Help:    "Number of raw records accumulated for one spatial query.",
			Buckets: prometheus.ExponentialBuckets(10, 4, 7), // 10 to ~40k
		},
	)

	cacheResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Response cache results by outcome.",
		},
		[]string{"outcome"},
	)

	cacheOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_seconds",
			Help:    "Latency of Redis cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		},
		[]string{"op", "ok"},
	)

	invalidationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Survey-refresh invalidation events by result.",
		},
		[]string{"result"},
	)

	floodMemoTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flood_memo_total",
			Help: "Flood point-lookup memoization results by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamPage(endpoint string, durationSeconds float64) {
	upstreamPageLatencySeconds.WithLabelValues(endpoint).Observe(durationSeconds)
}

func ObserveQueryFanout(pages, records int) {
	upstreamPagesPerQuery.Observe(float64(pages))
	upstreamRecordsPerQuery.Observe(float64(records))
}

func IncCacheHit()  { cacheResultsTotal.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheResultsTotal.WithLabelValues("miss").Inc() }

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	ok := "true"
	if err != nil {
		ok = "false"
	}
	cacheOpSeconds.WithLabelValues(op, ok).Observe(durationSeconds)
}

func IncInvalidation(result string) {
	invalidationEventsTotal.WithLabelValues(result).Inc()
}

func IncFloodMemo(outcome string) {
	floodMemoTotal.WithLabelValues(outcome).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
