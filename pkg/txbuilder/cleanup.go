package txbuilder

import (
	"errors"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
)

// CleanupGame returns every fund of the game to the admin: the game output,
// when present, with a Collect redeemer, the outbound outputs of every
// player listed in the game state, and the admin outputs.
func (b *Builder) CleanupGame(utxos cardano.UTxOs) (*Tx, error) {
	tx := &cardano.Transaction{}
	total := cardano.Value{}
	spend := func(utxo cardano.UTxO) {
		tx.Body.Inputs = append(tx.Body.Inputs, utxo.Input)
		total = total.Add(utxo.Value)
	}

	game, state, err := b.gameUTxO(utxos)
	hasGame := err == nil
	if err != nil && !errors.Is(err, ErrNoGameUTxO) {
		return nil, err
	}

	if hasGame {
		spend(game)
		seen := make(map[cardano.Hash28]bool)
		for _, player := range state.Players {
			keyHash := cardano.Hash28(player)
			if seen[keyHash] {
				continue
			}
			seen[keyHash] = true

			script, err := OutboundScript(b.AdminKey.Hash(), keyHash).Script()
			if err != nil {
				return nil, err
			}
			outbound := sortUTxOs(utxos.AtAddress(script.Address(b.NetworkID)))
			if len(outbound) == 0 {
				continue
			}
			for _, utxo := range outbound {
				spend(utxo)
			}
			tx.Witnesses.NativeScripts = append(
				tx.Witnesses.NativeScripts, OutboundScript(b.AdminKey.Hash(), keyHash),
			)
		}
	}

	for _, utxo := range b.FindAdminUTxOs(utxos) {
		if utxo.Address.Payment.Kind != cardano.KeyHashCredential {
			continue
		}
		spend(utxo)
	}
	if len(tx.Body.Inputs) == 0 {
		return nil, ErrNoAdminUTxO
	}

	tx.Body.Outputs = []cardano.Output{{Address: b.AdminAddress(), Value: total}}

	if hasGame {
		collateral, err := b.collateral(utxos)
		if err != nil {
			return nil, err
		}
		tx.Body.Collateral = []cardano.Input{collateral.Input}
		if err := b.attachValidator(tx, game.Input, Collect, utxos); err != nil {
			return nil, err
		}
	}
	return b.finalize(tx)
}
