package txbuilder

import (
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
)

// NewGameParams describes the game to open.
type NewGameParams struct {
	// Player optionally joins the game right away.
	Player      *cardano.Address
	PlayerCount uint64
	BotCount    uint64
}

// NewGame spends the first funded admin output and locks the initial game
// state at the validator address. Outputs are, in order: the player output
// if a player joins, the game output, and the admin change.
func (b *Builder) NewGame(params NewGameParams, utxos cardano.UTxOs) (*Tx, error) {
	admin, ok := b.firstFundedAdminUTxO(utxos)
	if !ok {
		return nil, ErrNoAdminUTxO
	}

	state := gamestate.New(b.AdminCredential(), params.PlayerCount, params.BotCount)
	outputs := make([]cardano.Output, 0, 3)
	spent := cardano.Value{}

	if params.Player != nil {
		player, err := playerKeyHash(*params.Player)
		if err != nil {
			return nil, err
		}
		outbound, err := b.OutboundAddress(player)
		if err != nil {
			return nil, err
		}
		value := cardano.NewValue(b.PlayerLovelace)
		outputs = append(outputs, cardano.Output{Address: outbound, Value: value})
		spent = spent.Add(value)
		state = state.WithPlayer(gamestate.PaymentCredential(player))
	}

	gameValue := cardano.NewValue(b.GameLovelace)
	outputs = append(outputs, cardano.Output{
		Address: b.Validator.Address(b.NetworkID),
		Value:   gameValue,
		Datum:   cardano.InlineDatum(state.ToData()),
	})
	spent = spent.Add(gameValue)

	change, err := admin.Value.Sub(spent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	}
	outputs = append(outputs, cardano.Output{Address: b.AdminAddress(), Value: change})

	ttl := cardano.SlotConfigForNetwork(b.NetworkID).SlotAt(b.now().Add(ValidityPeriod))
	tx := &cardano.Transaction{
		Body: cardano.TxBody{
			Inputs:  []cardano.Input{admin.Input},
			Outputs: outputs,
			Fee:     0,
			TTL:     ttl,
		},
	}
	return b.finalize(tx)
}
