// Package metrics publishes the prometheus gauges of the sidecar and the
// counters of the control plane.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

// Names of the gauges read back by the status reader.
const (
	NodeStateMetric    = "state"
	TransactionsMetric = "transactions"
	GameStateMetric    = "game_state"
)

// NodeMetrics implements ports.NodeMetricsPublisher on its own registry.
type NodeMetrics struct {
	registry     *prometheus.Registry
	nodeState    prometheus.Gauge
	gameState    prometheus.Gauge
	transactions prometheus.Counter
}

func NewNodeMetrics() *NodeMetrics {
	m := &NodeMetrics{
		registry: prometheus.NewRegistry(),
		nodeState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: NodeStateMetric,
			Help: "The state of the hydra node: 0 offline, 1 online, 2 initializing, 3 open.",
		}),
		gameState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: GameStateMetric,
			Help: "The state of the game: 0 waiting, 1 lobby, 2 running, 3 done.",
		}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: TransactionsMetric,
			Help: "The number of transactions confirmed by the head.",
		}),
	}
	m.registry.MustRegister(m.nodeState, m.gameState, m.transactions)
	return m
}

func (m *NodeMetrics) SetNodeState(state domain.NodeState) {
	// Sleeping has no gauge value.
	if state == domain.NodeStateSleeping {
		state = domain.NodeStateOffline
	}
	m.nodeState.Set(float64(state))
}

func (m *NodeMetrics) SetGameState(state domain.GameState) {
	m.gameState.Set(float64(state))
}

func (m *NodeMetrics) AddTransactions(n int) {
	if n > 0 {
		m.transactions.Add(float64(n))
	}
}

// Handler serves the registry in the text exposition format.
func (m *NodeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
