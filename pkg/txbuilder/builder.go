package txbuilder

import (
	"fmt"
	"time"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/gamestate"
)

const (
	// DefaultPlayerLovelace is locked at the outbound address of a player
	// joining a new game.
	DefaultPlayerLovelace uint64 = 10_000_000
	// ValidityPeriod bounds the validity interval of new game transactions.
	ValidityPeriod = 365 * 24 * time.Hour
)

// DefaultRedeemerBudget is the execution budget declared for validator runs.
// Heads run with zero fees so the budget only has to fit the limits.
var DefaultRedeemerBudget = cardano.ExUnits{Mem: 14_000_000, Steps: 10_000_000_000}

// Builder assembles and signs the game transactions of an admin.
// It holds no state: every method works on the UTxO snapshot it is given,
// which must be refetched after each submitted transaction.
type Builder struct {
	AdminKey  cardano.SigningKey
	NetworkID uint8
	Validator Validator
	// CostModel is the PlutusV2 cost model of the head, as returned by the
	// protocol parameters endpoint.
	CostModel      []int64
	PlayerLovelace uint64
	GameLovelace   uint64
	RedeemerBudget cardano.ExUnits
	Now            func() time.Time
}

// NewBuilder returns a builder with default amounts and budget.
func NewBuilder(
	adminKey cardano.SigningKey, networkID uint8, validator Validator, costModel []int64,
) *Builder {
	return &Builder{
		AdminKey:       adminKey,
		NetworkID:      networkID,
		Validator:      validator,
		CostModel:      costModel,
		PlayerLovelace: DefaultPlayerLovelace,
		RedeemerBudget: DefaultRedeemerBudget,
		Now:            time.Now,
	}
}

// AdminAddress returns the enterprise address of the admin key.
func (b *Builder) AdminAddress() cardano.Address {
	return b.AdminKey.Address(b.NetworkID)
}

// AdminCredential returns the admin key hash as a game credential.
func (b *Builder) AdminCredential() gamestate.PaymentCredential {
	return gamestate.PaymentCredential(b.AdminKey.Hash())
}

// FindAdminUTxOs returns the outputs whose payment credential hash equals
// the admin key hash, sorted by reference.
func (b *Builder) FindAdminUTxOs(utxos cardano.UTxOs) cardano.UTxOs {
	return sortUTxOs(utxos.WithPaymentHash(b.AdminKey.Hash()))
}

// GameUTxOs returns the outputs locked at the game validator, sorted by
// reference.
func (b *Builder) GameUTxOs(utxos cardano.UTxOs) cardano.UTxOs {
	return sortUTxOs(utxos.AtAddress(b.Validator.Address(b.NetworkID)))
}

// OutboundAddress returns the address holding the funds of player.
func (b *Builder) OutboundAddress(player cardano.Hash28) (cardano.Address, error) {
	return OutboundAddress(b.NetworkID, b.AdminKey.Hash(), player)
}

func (b *Builder) firstFundedAdminUTxO(utxos cardano.UTxOs) (cardano.UTxO, bool) {
	for _, utxo := range b.FindAdminUTxOs(utxos) {
		if utxo.Value.Coin() > 0 {
			return utxo, true
		}
	}
	return cardano.UTxO{}, false
}

func (b *Builder) collateral(utxos cardano.UTxOs) (cardano.UTxO, error) {
	for _, utxo := range b.FindAdminUTxOs(utxos) {
		if utxo.Value.Coin() == 0 || utxo.Address.Payment.Kind != cardano.KeyHashCredential {
			continue
		}
		return utxo, nil
	}
	return cardano.UTxO{}, ErrNoCollateral
}

// gameUTxO returns the first output at the validator address together with
// its decoded state.
func (b *Builder) gameUTxO(utxos cardano.UTxOs) (cardano.UTxO, gamestate.GameState, error) {
	games := b.GameUTxOs(utxos)
	if len(games) == 0 {
		return cardano.UTxO{}, gamestate.GameState{}, ErrNoGameUTxO
	}
	game := games[0]
	state, err := GameStateOf(game)
	if err != nil {
		return cardano.UTxO{}, gamestate.GameState{}, err
	}
	return game, state, nil
}

// GameStateOf decodes the inline datum of a game output.
func GameStateOf(utxo cardano.UTxO) (gamestate.GameState, error) {
	if utxo.Datum == nil || utxo.Datum.Inline == nil {
		return gamestate.GameState{}, fmt.Errorf("%w: %s has no inline datum", ErrInvalidDatum, utxo.Input)
	}
	state, err := gamestate.FromData(utxo.Datum.Inline)
	if err != nil {
		return gamestate.GameState{}, fmt.Errorf("%w: %w", ErrInvalidDatum, err)
	}
	return state, nil
}

// scriptSource returns a reference input carrying the validator, if any.
func (b *Builder) scriptSource(utxos cardano.UTxOs) (cardano.Input, bool) {
	hash := b.Validator.Hash()
	for _, utxo := range sortUTxOs(utxos) {
		if utxo.ReferenceScript != nil && utxo.ReferenceScript.Hash() == hash {
			return utxo.Input, true
		}
	}
	return cardano.Input{}, false
}

// attachValidator adds the spend redeemer of the game input, the validator
// script (by reference when possible) and the script data hash.
func (b *Builder) attachValidator(
	tx *cardano.Transaction, game cardano.Input, action SpendAction, utxos cardano.UTxOs,
) error {
	sorted := append([]cardano.Input(nil), tx.Body.Inputs...)
	cardano.SortInputs(sorted)
	index := cardano.IndexOf(sorted, game)
	if index < 0 {
		return fmt.Errorf("game input %s not spent", game)
	}

	redeemers := []cardano.Redeemer{{
		Tag:     cardano.RedeemerSpend,
		Index:   uint32(index),
		Data:    action.ToData(),
		ExUnits: b.RedeemerBudget,
	}}
	hash, err := cardano.ScriptDataHash(redeemers, nil, b.CostModel)
	if err != nil {
		return fmt.Errorf("script data hash: %w", err)
	}

	if ref, ok := b.scriptSource(utxos); ok {
		tx.Body.ReferenceInputs = append(tx.Body.ReferenceInputs, ref)
	} else {
		tx.Witnesses.PlutusV2Scripts = append(tx.Witnesses.PlutusV2Scripts, b.Validator.Script.Bytes)
	}
	tx.Witnesses.Redeemers = redeemers
	tx.Body.ScriptDataHash = hash
	tx.Body.RequiredSigners = []cardano.Hash28{b.AdminKey.Hash()}
	return nil
}

// finalize signs tx with the admin key.
func (b *Builder) finalize(tx *cardano.Transaction) (*Tx, error) {
	if err := tx.Sign(b.AdminKey); err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return b.toTx(tx)
}

func (b *Builder) toTx(tx *cardano.Transaction) (*Tx, error) {
	id, err := tx.ID()
	if err != nil {
		return nil, err
	}
	buf, err := tx.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	inputs := append([]cardano.Input(nil), tx.Body.Inputs...)
	cardano.SortInputs(inputs)
	return &Tx{
		Hash:      id,
		CBOR:      buf,
		Inputs:    inputs,
		Outputs:   tx.Body.Outputs,
		Fee:       tx.Body.Fee,
		NetworkID: b.NetworkID,
	}, nil
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// SignDraft adds the admin witness to a transaction drafted by a node, for
// instance a commit.
func (b *Builder) SignDraft(raw []byte) (*Tx, error) {
	signed, id, err := cardano.AddWitness(raw, b.AdminKey)
	if err != nil {
		return nil, err
	}
	return &Tx{Hash: id, CBOR: signed, NetworkID: b.NetworkID}, nil
}

func playerKeyHash(player cardano.Address) (cardano.Hash28, error) {
	cred, err := player.PaymentCredential()
	if err != nil {
		return cardano.Hash28{}, fmt.Errorf("%w: %s", ErrInvalidPlayer, err)
	}
	if cred.Kind != cardano.KeyHashCredential {
		return cardano.Hash28{}, fmt.Errorf("%w: %s is not a key address", ErrInvalidPlayer, player)
	}
	return cred.Hash, nil
}

func sortUTxOs(utxos cardano.UTxOs) cardano.UTxOs {
	return utxos.Sorted()
}
