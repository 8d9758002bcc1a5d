package txbuilder

import (
	"encoding/hex"
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/cardano"
	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

// SpendAction is the redeemer of the game validator. Values are constructor
// indexes and part of the validator interface.
type SpendAction uint64

const (
	StartGame SpendAction = iota
	Collect
)

// ToData encodes the action as an empty constructor.
func (a SpendAction) ToData() plutus.Data {
	return plutus.NewConstr(uint64(a))
}

// Validator is the PlutusV2 script guarding the game output.
type Validator struct {
	Script cardano.Script
}

// NewValidator parses the hex compiled code of the game validator. Both the
// blueprint form and the text envelope form are accepted.
func NewValidator(compiledCode string) (Validator, error) {
	b, err := hex.DecodeString(compiledCode)
	if err != nil {
		return Validator{}, fmt.Errorf("invalid validator hex: %w", err)
	}
	if len(b) == 0 {
		return Validator{}, fmt.Errorf("empty validator script")
	}
	return Validator{cardano.Script{
		Type:  cardano.PlutusV2ScriptType,
		Bytes: cardano.NormalizePlutusScript(b),
	}}, nil
}

// MustNewValidator is like NewValidator but panics on error. It is meant for
// compiled-in scripts.
func MustNewValidator(compiledCode string) Validator {
	v, err := NewValidator(compiledCode)
	if err != nil {
		panic(err)
	}
	return v
}

// Hash returns the script hash.
func (v Validator) Hash() cardano.Hash28 {
	return v.Script.Hash()
}

// Address returns the enterprise script address of the validator.
func (v Validator) Address(network uint8) cardano.Address {
	return v.Script.Address(network)
}

// OutboundScript is the script locking the funds of a player: either the
// admin or the player can spend them.
func OutboundScript(admin, player cardano.Hash28) cardano.NativeScript {
	return cardano.RequireAnyOf(
		cardano.RequireSignature(admin),
		cardano.RequireSignature(player),
	)
}

// OutboundAddress returns the address of OutboundScript.
func OutboundAddress(network uint8, admin, player cardano.Hash28) (cardano.Address, error) {
	script, err := OutboundScript(admin, player).Script()
	if err != nil {
		return cardano.Address{}, err
	}
	return script.Address(network), nil
}
