package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the proxy's Prometheus instruments.
type Metrics struct {
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	FetchErrors   prometheus.Counter
	NotFound      prometheus.Counter
	FetchDuration prometheus.Histogram
}

// NewMetrics builds and registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mavenproxy_cache_hits_total",
			Help: "Requests served from the local artifact cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mavenproxy_cache_misses_total",
			Help: "Requests that required an upstream fetch.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mavenproxy_fetch_errors_total",
			Help: "Upstream fetches that failed for reasons other than a missing object.",
		}),
		NotFound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mavenproxy_not_found_total",
			Help: "Requests for objects that exist neither in cache nor upstream.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mavenproxy_fetch_duration_seconds",
			Help:    "Upstream fetch latency.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	reg.MustRegister(m.CacheHits, m.CacheMisses, m.FetchErrors, m.NotFound, m.FetchDuration)
	return m
}
