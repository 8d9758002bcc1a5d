package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ControlPlaneMetrics counts the game operations served by the rpc tier.
type ControlPlaneMetrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	nodes      *prometheus.GaugeVec
}

func NewControlPlaneMetrics() *ControlPlaneMetrics {
	m := &ControlPlaneMetrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydra_control_plane",
			Name:      "game_operations_total",
			Help:      "Game operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hydra_control_plane",
			Name:      "nodes",
			Help:      "Nodes in the directory by node state.",
		}, []string{"state"}),
	}
	m.registry.MustRegister(m.operations, m.nodes)
	return m
}

// ObserveOperation counts an operation, failed if err is not nil.
func (m *ControlPlaneMetrics) ObserveOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// SetNodeCounts replaces the node gauges.
func (m *ControlPlaneMetrics) SetNodeCounts(counts map[string]int) {
	m.nodes.Reset()
	for state, n := range counts {
		m.nodes.WithLabelValues(state).Set(float64(n))
	}
}

func (m *ControlPlaneMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
