package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angeloszaimis/cluster-monitor/internal/metrics"
	"github.com/angeloszaimis/cluster-monitor/internal/monitor"
)

type stateReporter interface {
	State() monitor.State
}

func setupRouter(mon stateReporter, metricsCollector *metrics.Collector, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", readyHandler(mon, metricsCollector))
	mux.HandleFunc("GET /status", metricsCollector.Handler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

// readyHandler reports ready once the probe is running and its last query
// succeeded.
func readyHandler(mon stateReporter, metricsCollector *metrics.Collector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := mon.State()
		if state != monitor.StateRunning || !metricsCollector.Snapshot().LastQueryOK {
			http.Error(w, state.String(), http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(state.String()))
	}
}
