package ports

import (
	"context"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

// NodeMetrics are the gauges published by a node sidecar.
type NodeMetrics struct {
	NodeState    domain.NodeState
	Transactions int64
	// GameState is nil when the sidecar does not publish it.
	GameState *domain.GameState
}

// NodeStatusReader scrapes the metrics of a node sidecar.
type NodeStatusReader interface {
	// ReadNodeMetrics fetches and parses the metrics exposed at url.
	ReadNodeMetrics(ctx context.Context, url string) (*NodeMetrics, error)
}

// NodeStatusWriter persists the observed status of a node.
type NodeStatusWriter interface {
	// PatchNodeStatus replaces the status of the named node.
	PatchNodeStatus(ctx context.Context, name string, status domain.NodeStatus) error
}

// NodeMetricsPublisher exposes the state of the local node as gauges.
type NodeMetricsPublisher interface {
	SetNodeState(state domain.NodeState)
	SetGameState(state domain.GameState)
	AddTransactions(n int)
}
