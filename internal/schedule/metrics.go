// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schedule

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics tracks scheduled run outcomes for the Prometheus endpoint.
type metrics struct {
	runsTotal       *prometheus.CounterVec
	runFailures     *prometheus.CounterVec
	lastSuccessUnix *prometheus.GaugeVec
	runDuration     prometheus.Histogram
}

func newMetrics(reg *prometheus.Registry) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arxiv_harvester_runs_total",
			Help: "Scheduled fetch runs, by feed and status.",
		}, []string{"feed", "status"}),
		runFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arxiv_harvester_run_failures_total",
			Help: "Scheduled fetch runs that failed, by feed.",
		}, []string{"feed"}),
		lastSuccessUnix: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "arxiv_harvester_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run, by feed.",
		}, []string{"feed"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "arxiv_harvester_run_duration_seconds",
			Help:    "Wall-clock duration of scheduled runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// handler serves the registry over HTTP for --metrics-addr.
func metricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
