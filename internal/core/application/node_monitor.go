package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/internal/core/ports"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
	"github.com/hydra-arena/hydra-control-plane/pkg/txbuilder"
)

const onlineCheckInterval = time.Second

// HydraEventSource is a stream of events of a hydra node.
type HydraEventSource interface {
	Events() <-chan hydra.Event
	Online() bool
}

// NodeMonitor follows the events of the local node and publishes its head
// state, the number of confirmed transactions and the state of the game
// locked at the validator address.
type NodeMonitor struct {
	source    HydraEventSource
	publisher ports.NodeMetricsPublisher
	validator cardano.Address

	nodeState domain.NodeState
	gameState domain.GameState
}

func NewNodeMonitor(
	source HydraEventSource,
	publisher ports.NodeMetricsPublisher,
	validator txbuilder.Validator,
	networkID uint8,
) *NodeMonitor {
	return &NodeMonitor{
		source:    source,
		publisher: publisher,
		validator: validator.Address(networkID),
		nodeState: domain.NodeStateOffline,
		gameState: domain.GameStateWaiting,
	}
}

// Start consumes events until ctx is done or the source is closed.
func (m *NodeMonitor) Start(ctx context.Context) error {
	m.publisher.SetNodeState(m.nodeState)
	m.publisher.SetGameState(m.gameState)

	ticker := time.NewTicker(onlineCheckInterval)
	defer ticker.Stop()

	events := m.source.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.checkOnline()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			m.HandleEvent(event)
		}
	}
}

// HandleEvent updates the published gauges from a single event.
func (m *NodeMonitor) HandleEvent(event hydra.Event) {
	switch e := event.(type) {
	case hydra.Greetings:
		m.setNodeState(headStatusToNodeState(e.HeadStatus))
		m.setGameState(m.gameStateOf(e.SnapshotUTxOs))
	case hydra.HeadIsInitializing:
		m.setNodeState(domain.NodeStateHeadIsInitializing)
	case hydra.HeadIsOpen:
		m.setNodeState(domain.NodeStateHeadIsOpen)
		m.setGameState(m.gameStateOf(e.UTxOs))
	case hydra.SnapshotConfirmed:
		m.publisher.AddTransactions(len(e.ConfirmedTransactions))
		m.setGameState(m.gameStateOf(e.UTxOs))
	case hydra.Unimplemented:
		log.Debugf("ignoring unsupported node event %s", e.Type)
	}
}

func (m *NodeMonitor) checkOnline() {
	if !m.source.Online() {
		m.setNodeState(domain.NodeStateOffline)
		return
	}
	if m.nodeState == domain.NodeStateOffline {
		m.setNodeState(domain.NodeStateOnline)
	}
}

func (m *NodeMonitor) setNodeState(state domain.NodeState) {
	if state != m.nodeState {
		log.Infof("node state changed from %s to %s", m.nodeState, state)
	}
	m.nodeState = state
	m.publisher.SetNodeState(state)
}

func (m *NodeMonitor) setGameState(state domain.GameState) {
	if state != m.gameState {
		log.Infof("game state changed from %s to %s", m.gameState, state)
	}
	m.gameState = state
	m.publisher.SetGameState(state)
}

// gameStateOf returns the state of the first decodable game at the
// validator address, Waiting if there is none.
func (m *NodeMonitor) gameStateOf(utxos cardano.UTxOs) domain.GameState {
	for _, utxo := range utxos.AtAddress(m.validator).Sorted() {
		state, err := txbuilder.GameStateOf(utxo)
		if err != nil {
			log.WithError(err).Debugf("skipping game utxo %s", utxo.Input)
			continue
		}
		return toDomainGameState(state.State)
	}
	return domain.GameStateWaiting
}

func toDomainGameState(state gamestate.State) domain.GameState {
	switch {
	case state == gamestate.Lobby:
		return domain.GameStateLobby
	case state == gamestate.Running:
		return domain.GameStateRunning
	case state.IsTerminal():
		return domain.GameStateDone
	}
	return domain.GameStateWaiting
}

func headStatusToNodeState(status string) domain.NodeState {
	switch status {
	case "Initializing":
		return domain.NodeStateHeadIsInitializing
	case "Open":
		return domain.NodeStateHeadIsOpen
	}
	return domain.NodeStateOnline
}
