package txbuilder

import (
	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
)

// Commit builds the unsigned blueprint transaction spending the given
// layer one outputs into the head. The node drafts the actual commit
// transaction from it, which is then signed with SignDraft.
func (b *Builder) Commit(utxos cardano.UTxOs) (*Tx, error) {
	if len(utxos) == 0 {
		return nil, ErrNoCommitInputs
	}
	tx := &cardano.Transaction{
		Body: cardano.TxBody{
			Inputs:  utxos.Inputs(),
			Outputs: []cardano.Output{},
		},
	}
	return b.toTx(tx)
}
