// Package metrics exposes prometheus collectors for quotes, upstream calls
// and cache lookups.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "hexoffer_"

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

var (
	registerOnce sync.Once
	registry     *prometheus.Registry

	quotesTotal       *prometheus.CounterVec
	upstreamRequests  *prometheus.CounterVec
	upstreamLatency   *prometheus.HistogramVec
	cacheLookupsTotal *prometheus.CounterVec
)

func initCollectors() {
	registerOnce.Do(func() {
		registry = prometheus.NewRegistry()

		quotesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quotes_total",
				Help: "Total monthly payment quotes by mode and result",
			},
			[]string{"mode", "result"},
		)
		upstreamRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "upstream_requests_total",
				Help: "Total heating-offer API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		)
		upstreamLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upstream_latency_seconds",
				Help:    "Heating-offer API latency in seconds, retries included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		)
		cacheLookupsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Total upstream cache lookups by result",
			},
			[]string{"result"},
		)

		registry.MustRegister(
			quotesTotal,
			upstreamRequests,
			upstreamLatency,
			cacheLookupsTotal,
			collectors.NewGoCollector(),
		)
	})
}

// ObserveQuote counts one quote.
func ObserveQuote(mode, result string) {
	initCollectors()
	quotesTotal.WithLabelValues(mode, result).Inc()
}

// ObserveUpstream counts one upstream call and records its latency.
func ObserveUpstream(endpoint, result string, duration time.Duration) {
	initCollectors()
	upstreamRequests.WithLabelValues(endpoint, result).Inc()
	upstreamLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncCacheLookup counts one cache lookup.
func IncCacheLookup(result string) {
	initCollectors()
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry holding every collector.
func Registry() *prometheus.Registry {
	initCollectors()
	return registry
}

// Handler serves the registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
