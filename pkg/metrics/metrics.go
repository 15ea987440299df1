package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SitesProcessed counts records that went through the pipeline.
	SitesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hostchecker",
		Name:      "sites_processed_total",
		Help:      "Number of input records processed.",
	})

	// FetchFailures counts fetch failures by kind (timeout, certificate,
	// http_status, connection, request).
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hostchecker",
		Name:      "fetch_failures_total",
		Help:      "Number of failed page fetches by failure kind.",
	}, []string{"kind"})

	// DNSFailures counts NS lookups that ended in "DNS Lookup Failed".
	DNSFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hostchecker",
		Name:      "dns_failures_total",
		Help:      "Number of failed NS lookups.",
	})
)

// Exporter serves Prometheus metrics on addr (e.g. ":2112"). Blocks; run it
// in a goroutine.
func Exporter(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
