package gamestate

import (
	"encoding/hex"
	"fmt"

	"github.com/hydra-arena/hydra-control-plane/pkg/plutus"
)

// CredentialSize is the length in bytes of a key or script hash.
const CredentialSize = 28

// PaymentCredential identifies a player or the referee by the hash of their
// payment key.
type PaymentCredential [CredentialSize]byte

// NewPaymentCredential copies b into a credential. b must be exactly 28
// bytes long: shorter or longer values are rejected, never padded.
func NewPaymentCredential(b []byte) (PaymentCredential, error) {
	var c PaymentCredential
	if len(b) != CredentialSize {
		return c, fmt.Errorf("%w, got %d", ErrInvalidCredentialLength, len(b))
	}
	copy(c[:], b)
	return c, nil
}

// PaymentCredentialFromHex parses an hex encoded credential.
func PaymentCredentialFromHex(s string) (PaymentCredential, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PaymentCredential{}, err
	}
	return NewPaymentCredential(b)
}

func (c PaymentCredential) String() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns a copy of the credential bytes.
func (c PaymentCredential) Bytes() []byte {
	b := make([]byte, CredentialSize)
	copy(b, c[:])
	return b
}

// ToData encodes the credential as a single field constructor 0 wrapping
// the 28 hash bytes.
func (c PaymentCredential) ToData() plutus.Data {
	return plutus.NewConstr(0, plutus.Bytes(c.Bytes()))
}

// PaymentCredentialFromData is the inverse of ToData.
func PaymentCredentialFromData(d plutus.Data) (PaymentCredential, error) {
	fields, err := expectConstr(d, 0, 1)
	if err != nil {
		return PaymentCredential{}, err
	}
	b, ok := fields[0].(plutus.Bytes)
	if !ok {
		return PaymentCredential{}, fmt.Errorf(
			"%w: expected byte string, got %T", ErrInvalidDatum, fields[0],
		)
	}
	c, err := NewPaymentCredential(b)
	if err != nil {
		return PaymentCredential{}, fmt.Errorf("%w: %s", ErrInvalidDatum, err)
	}
	return c, nil
}

func expectConstr(d plutus.Data, index uint64, numFields int) ([]plutus.Data, error) {
	c, ok := d.(plutus.Constr)
	if !ok {
		return nil, fmt.Errorf("%w: expected constructor, got %T", ErrInvalidDatum, d)
	}
	if c.Index != index {
		return nil, fmt.Errorf(
			"%w: expected constructor tag %d, got %d",
			ErrInvalidDatum, tagOf(index), tagOf(c.Index),
		)
	}
	if len(c.Fields) != numFields {
		return nil, fmt.Errorf(
			"%w: constructor tag %d expects %d fields, got %d",
			ErrInvalidDatum, tagOf(index), numFields, len(c.Fields),
		)
	}
	return c.Fields, nil
}

// tagOf returns the cbor tag of a compact constructor index, which is what
// shows up in explorers and node logs.
func tagOf(index uint64) uint64 {
	return 121 + index
}
