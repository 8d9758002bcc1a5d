package txbuilder

import (
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
)

// StartGame moves the game locked at the validator from Lobby to Running.
func (b *Builder) StartGame(utxos cardano.UTxOs) (*Tx, error) {
	game, state, err := b.gameUTxO(utxos)
	if err != nil {
		return nil, err
	}
	if state.State != gamestate.Lobby {
		return nil, fmt.Errorf("%w: game is %s", ErrInvalidGameState, state.State)
	}
	collateral, err := b.collateral(utxos)
	if err != nil {
		return nil, err
	}

	next := state.WithState(gamestate.Running)
	tx := &cardano.Transaction{
		Body: cardano.TxBody{
			Inputs: []cardano.Input{game.Input},
			Outputs: []cardano.Output{{
				Address: game.Address,
				Value:   game.Value.Clone(),
				Datum:   cardano.InlineDatum(next.ToData()),
			}},
			Collateral: []cardano.Input{collateral.Input},
		},
	}
	if err := b.attachValidator(tx, game.Input, StartGame, utxos); err != nil {
		return nil, err
	}
	return b.finalize(tx)
}
