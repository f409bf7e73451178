// Package metrics registers the process-wide Prometheus collectors for the
// upstream gateways and the fleet-size cache.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	UpstreamCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "driver_gtm",
		Name:      "upstream_calls_total",
		Help:      "Number of HTTP calls issued to upstream APIs",
	}, []string{"target", "kind"})

	FleetCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "driver_gtm",
		Name:      "fleet_cache_hits_total",
		Help:      "Fleet-size lookups served from the in-process cache",
	})

	FleetCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "driver_gtm",
		Name:      "fleet_cache_misses_total",
		Help:      "Fleet-size lookups that required a registry call",
	})

	FleetLookupFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "driver_gtm",
		Name:      "fleet_lookup_failures_total",
		Help:      "Fleet-size registry calls that failed and degraded to unknown",
	})
)

func init() {
	prometheus.MustRegister(
		UpstreamCalls,
		FleetCacheHits,
		FleetCacheMisses,
		FleetLookupFailures,
	)
}
