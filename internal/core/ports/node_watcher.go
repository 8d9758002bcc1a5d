package ports

import (
	"context"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
)

// NodeEventType is the kind of change carried by a NodeEvent.
type NodeEventType int

const (
	// NodeEventInit starts a full relist of the nodes. It is followed by one
	// NodeEventInitApply per node and closed by NodeEventInitDone.
	NodeEventInit NodeEventType = iota
	NodeEventInitApply
	NodeEventInitDone
	// NodeEventApply notifies a node was added or modified.
	NodeEventApply
	// NodeEventDelete notifies a node was removed.
	NodeEventDelete
)

var nodeEventTypeNames = map[NodeEventType]string{
	NodeEventInit:      "Init",
	NodeEventInitApply: "InitApply",
	NodeEventInitDone:  "InitDone",
	NodeEventApply:     "Apply",
	NodeEventDelete:    "Delete",
}

func (t NodeEventType) String() string {
	return nodeEventTypeNames[t]
}

// NodeEvent is a change of the cluster node resources.
type NodeEvent struct {
	Type NodeEventType
	// Node is empty for NodeEventInit and NodeEventInitDone.
	Node domain.Node
}

// NodeWatcher streams the node resources of a namespace.
type NodeWatcher interface {
	// Watch relists the nodes and then forwards every change to handler,
	// in order, until ctx is done. Any relist is announced by NodeEventInit.
	// It returns nil only if ctx is done; a failed or closed stream returns
	// an error.
	Watch(ctx context.Context, handler func(NodeEvent)) error
}
