package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cluster_monitor"

type promMetrics struct {
	connectAttempts *prometheus.CounterVec
	queries         *prometheus.CounterVec
	queryDuration   prometheus.Histogram
	clusterUp       prometheus.Gauge
	state           *prometheus.GaugeVec
}

func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	factory := promauto.With(reg)

	return &promMetrics{
		connectAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Connection pool build attempts.",
		}, []string{"result"}),

		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Liveness queries executed.",
		}, []string{"result"}),

		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Liveness query duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),

		clusterUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cluster_up",
			Help:      "Whether the last liveness queries reached the cluster (1) or not (0).",
		}),

		state: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Current monitor lifecycle state (1 for the active state).",
		}, []string{"state"}),
	}
}
