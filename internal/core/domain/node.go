package domain

import (
	"fmt"
	"time"
)

// NodeState is the state of the hydra head running on a node, as reported
// by the node sidecar.
type NodeState int

const (
	NodeStateOffline NodeState = iota
	NodeStateOnline
	NodeStateHeadIsInitializing
	NodeStateHeadIsOpen
	NodeStateSleeping
)

var nodeStateNames = map[NodeState]string{
	NodeStateOffline:            "Offline",
	NodeStateOnline:             "Online",
	NodeStateHeadIsInitializing: "HeadIsInitializing",
	NodeStateHeadIsOpen:         "HeadIsOpen",
	NodeStateSleeping:           "Sleeping",
}

func (s NodeState) String() string {
	if name, ok := nodeStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NodeState(%d)", int(s))
}

// ParseNodeState parses the name of a node state. An empty name is Offline.
func ParseNodeState(name string) (NodeState, error) {
	if name == "" {
		return NodeStateOffline, nil
	}
	for state, n := range nodeStateNames {
		if n == name {
			return state, nil
		}
	}
	return NodeStateOffline, fmt.Errorf("%w: %q", ErrUnknownNodeState, name)
}

// GameState is the progress of the game hosted on a node.
type GameState int

const (
	GameStateWaiting GameState = iota
	GameStateLobby
	GameStateRunning
	GameStateDone
)

var gameStateNames = map[GameState]string{
	GameStateWaiting: "Waiting",
	GameStateLobby:   "Lobby",
	GameStateRunning: "Running",
	GameStateDone:    "Done",
}

func (s GameState) String() string {
	if name, ok := gameStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("GameState(%d)", int(s))
}

// ParseGameState parses the name of a game state. An empty name is Waiting.
func ParseGameState(name string) (GameState, error) {
	if name == "" {
		return GameStateWaiting, nil
	}
	for state, n := range gameStateNames {
		if n == name {
			return state, nil
		}
	}
	return GameStateWaiting, fmt.Errorf("%w: %q", ErrUnknownGameState, name)
}

// Resources are the compute limits of a node pod.
type Resources struct {
	CPU    string
	Memory string
}

// NodeSpec is the desired configuration of a node.
type NodeSpec struct {
	Offline   bool
	NetworkID uint8
	// SeedInput is the layer one output funding the node, in txhash#index form.
	SeedInput    string
	CommitInputs []string
	Asleep       bool
	Resources    Resources
}

// NodeStatus is the observed state of a node. It is eventually consistent:
// a node without status is Offline and Waiting.
type NodeStatus struct {
	NodeState    NodeState
	GameState    GameState
	Transactions int64
	LocalURL     string
	ExternalURL  string
}

// Node is a hydra node managed by the cluster.
type Node struct {
	Name      string
	Namespace string
	CreatedAt time.Time
	Spec      NodeSpec
	Status    NodeStatus
}

// IsAvailable tells whether the node can host a new game: its head is open
// and no game is in progress.
func (n Node) IsAvailable() bool {
	return n.Status.NodeState == NodeStateHeadIsOpen &&
		n.Status.GameState == GameStateWaiting
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	clone := n
	if n.Spec.CommitInputs != nil {
		clone.Spec.CommitInputs = append([]string(nil), n.Spec.CommitInputs...)
	}
	return clone
}

// OlderThan orders nodes by creation time, then by name.
func (n Node) OlderThan(other Node) bool {
	if !n.CreatedAt.Equal(other.CreatedAt) {
		return n.CreatedAt.Before(other.CreatedAt)
	}
	return n.Name < other.Name
}
