package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hydra-arena/hydra-control-plane/internal/core/application"
	"github.com/hydra-arena/hydra-control-plane/internal/core/domain"
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
	"github.com/hydra-arena/hydra-control-plane/pkg/hydra"
)

func TestNodeMonitor(t *testing.T) {
	t.Parallel()

	lobby := gamestate.New(gamestate.PaymentCredential(adminKey.Hash()), 2, 0)
	notAGame := cardano.UTxO{
		Input:   cardano.Input{TxHash: txHash(7), Index: 0},
		Address: validator.Address(cardano.TestnetNetworkID),
		Value:   cardano.NewValue(1),
	}

	tests := []struct {
		name              string
		events            []hydra.Event
		expectedNodeState domain.NodeState
		expectedGameState domain.GameState
		expectedTxs       int
	}{
		{
			name:              "no_events",
			expectedNodeState: domain.NodeStateOffline,
			expectedGameState: domain.GameStateWaiting,
		},
		{
			name: "initializing",
			events: []hydra.Event{
				hydra.Greetings{HeadStatus: "Idle"},
				hydra.HeadIsInitializing{HeadID: "head"},
			},
			expectedNodeState: domain.NodeStateHeadIsInitializing,
			expectedGameState: domain.GameStateWaiting,
		},
		{
			name: "open_with_lobby",
			events: []hydra.Event{
				hydra.HeadIsOpen{
					HeadID: "head",
					UTxOs:  cardano.UTxOs{notAGame, gameUTxO(1, lobby)},
				},
			},
			expectedNodeState: domain.NodeStateHeadIsOpen,
			expectedGameState: domain.GameStateLobby,
		},
		{
			name: "snapshots",
			events: []hydra.Event{
				hydra.Greetings{HeadStatus: "Open"},
				hydra.SnapshotConfirmed{
					SnapshotNumber:        1,
					UTxOs:                 cardano.UTxOs{gameUTxO(1, lobby.WithState(gamestate.Running))},
					ConfirmedTransactions: []string{"a", "b"},
				},
				hydra.Unimplemented{Type: "Future", Raw: json.RawMessage(`{"tag":"Future"}`)},
				hydra.SnapshotConfirmed{
					SnapshotNumber:        2,
					UTxOs:                 cardano.UTxOs{gameUTxO(1, lobby.WithState(gamestate.Cheated))},
					ConfirmedTransactions: []string{"c"},
				},
			},
			expectedNodeState: domain.NodeStateHeadIsOpen,
			expectedGameState: domain.GameStateDone,
			expectedTxs:       3,
		},
		{
			name: "game_collected",
			events: []hydra.Event{
				hydra.HeadIsOpen{UTxOs: cardano.UTxOs{gameUTxO(1, lobby)}},
				hydra.SnapshotConfirmed{
					UTxOs:                 cardano.UTxOs{adminUTxO(2, 10)},
					ConfirmedTransactions: []string{"d"},
				},
			},
			expectedNodeState: domain.NodeStateHeadIsOpen,
			expectedGameState: domain.GameStateWaiting,
			expectedTxs:       1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			source := &fakeEventSource{
				events: make(chan hydra.Event, len(tt.events)),
				online: true,
			}
			for _, e := range tt.events {
				source.events <- e
			}
			close(source.events)

			publisher := &recordingPublisher{}
			monitor := application.NewNodeMonitor(
				source, publisher, validator, cardano.TestnetNetworkID,
			)
			require.NoError(t, monitor.Start(context.Background()))

			nodeState, gameState, txs := publisher.snapshot()
			require.Equal(t, tt.expectedNodeState, nodeState)
			require.Equal(t, tt.expectedGameState, gameState)
			require.Equal(t, tt.expectedTxs, txs)
		})
	}
}
