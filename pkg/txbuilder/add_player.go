package txbuilder

import "github.com/hydra-arena/hydra-control-plane/pkg/cardano"

// AddPlayer moves one admin output to the outbound address of player, from
// where either of them can spend it.
func (b *Builder) AddPlayer(player cardano.Address, utxos cardano.UTxOs) (*Tx, error) {
	keyHash, err := playerKeyHash(player)
	if err != nil {
		return nil, err
	}
	admin, ok := b.firstFundedAdminUTxO(utxos)
	if !ok {
		return nil, ErrNoAdminUTxO
	}
	outbound, err := b.OutboundAddress(keyHash)
	if err != nil {
		return nil, err
	}

	tx := &cardano.Transaction{
		Body: cardano.TxBody{
			Inputs: []cardano.Input{admin.Input},
			Outputs: []cardano.Output{
				{Address: outbound, Value: admin.Value.Clone()},
			},
		},
	}
	return b.finalize(tx)
}
