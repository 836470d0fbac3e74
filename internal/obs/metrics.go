// Copyright 2025 James Ross
package obs

import (
	"fmt"
	"net/http"

	"github.com/flyingrobots/squadron-sim/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MissionsRequested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "squadron_missions_requested_total",
		Help: "Total number of mission demand events generated across all runs",
	})
	MissionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "squadron_missions_started_total",
		Help: "Total number of missions that cleared the allocation check",
	})
	MissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "squadron_missions_rejected_total",
		Help: "Total number of missions rejected for lack of a resource",
	})
	DutiesUnfilled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "squadron_duties_unfilled_total",
		Help: "Total number of duty shifts that could not be staffed",
	})
	IterationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "squadron_montecarlo_iteration_duration_seconds",
		Help:    "Wall-clock duration of a single Monte Carlo iteration",
		Buckets: prometheus.DefBuckets,
	})
	IterationsAbandoned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "squadron_montecarlo_iterations_abandoned_total",
		Help: "Iterations that exhausted their retry budget or timed out repeatedly",
	})
	WorkersInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "squadron_montecarlo_workers_in_flight",
		Help: "Number of Monte Carlo iteration workers currently running",
	})
)

func init() {
	prometheus.MustRegister(
		MissionsRequested, MissionsStarted, MissionsRejected, DutiesUnfilled,
		IterationDuration, IterationsAbandoned, WorkersInFlight,
	)
}

// StartMetricsServer exposes /metrics on the configured port and
// returns the server for controlled shutdown.
func StartMetricsServer(cfg *config.Config) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Observability.MetricsPort), Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
