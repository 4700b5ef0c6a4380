package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acco_http_requests_total",
			Help: "Total number of HTTP requests served by the cache proxy",
		},
		[]string{"method", "route", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acco_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the cache proxy in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// CacheLookups counts cache-first lookups by outcome: hit, miss or error.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acco_cache_lookups_total",
			Help: "Total number of offline cache lookups",
		},
		[]string{"cache", "result"},
	)

	// CacheInstalls counts install attempts by outcome: ok or failed.
	CacheInstalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acco_cache_installs_total",
			Help: "Total number of offline cache installs",
		},
		[]string{"cache", "result"},
	)
)
