package cardano

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	MainnetNetworkID uint8 = 1
	TestnetNetworkID uint8 = 0

	mainnetHRP = "addr"
	testnetHRP = "addr_test"
)

// AddressType is the high nibble of the address header byte.
type AddressType uint8

const (
	BaseKeyKey AddressType = iota
	BaseScriptKey
	BaseKeyScript
	BaseScriptScript
	PointerKey
	PointerScript
	EnterpriseKey
	EnterpriseScript
	RewardKey    AddressType = 14
	RewardScript AddressType = 15
)

// CredentialKind tells whether a credential hash refers to a key or a script.
type CredentialKind uint8

const (
	KeyHashCredential CredentialKind = iota
	ScriptHashCredential
)

// Credential is a payment or stake credential.
type Credential struct {
	Kind CredentialKind
	Hash Hash28
}

// KeyCredential wraps a key hash.
func KeyCredential(h Hash28) Credential {
	return Credential{KeyHashCredential, h}
}

// ScriptCredential wraps a script hash.
func ScriptCredential(h Hash28) Credential {
	return Credential{ScriptHashCredential, h}
}

// Address is a Shelley era address. The delegation part, if any, is kept as
// raw bytes since nothing here needs to interpret it.
type Address struct {
	Type       AddressType
	Network    uint8
	Payment    Credential
	Delegation []byte
}

// NewEnterpriseAddress returns an address without delegation part.
func NewEnterpriseAddress(network uint8, payment Credential) Address {
	t := EnterpriseKey
	if payment.Kind == ScriptHashCredential {
		t = EnterpriseScript
	}
	return Address{Type: t, Network: network, Payment: payment}
}

// ParseAddress decodes a bech32 address.
func ParseAddress(s string) (Address, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if hrp != mainnetHRP && hrp != testnetHRP {
		return Address{}, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAddress, hrp)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	return AddressFromBytes(raw)
}

// AddressFromBytes decodes the binary form of an address.
func AddressFromBytes(raw []byte) (Address, error) {
	if len(raw) < 1+HashSize {
		return Address{}, fmt.Errorf(
			"%w: expected at least %d bytes, got %d", ErrInvalidAddress, 1+HashSize, len(raw),
		)
	}

	addr := Address{
		Type:    AddressType(raw[0] >> 4),
		Network: raw[0] & 0x0f,
	}
	switch addr.Type {
	case BaseKeyKey, BaseKeyScript, PointerKey, EnterpriseKey, RewardKey:
		addr.Payment.Kind = KeyHashCredential
	case BaseScriptKey, BaseScriptScript, PointerScript, EnterpriseScript, RewardScript:
		addr.Payment.Kind = ScriptHashCredential
	default:
		return Address{}, fmt.Errorf("%w: unsupported header 0x%x", ErrInvalidAddress, raw[0])
	}
	copy(addr.Payment.Hash[:], raw[1:1+HashSize])

	rest := raw[1+HashSize:]
	switch addr.Type {
	case BaseKeyKey, BaseScriptKey, BaseKeyScript, BaseScriptScript:
		if len(rest) != HashSize {
			return Address{}, fmt.Errorf(
				"%w: base address delegation part must be %d bytes", ErrInvalidAddress, HashSize,
			)
		}
	case EnterpriseKey, EnterpriseScript, RewardKey, RewardScript:
		if len(rest) != 0 {
			return Address{}, fmt.Errorf("%w: unexpected trailing bytes", ErrInvalidAddress)
		}
	}
	if len(rest) > 0 {
		addr.Delegation = append([]byte(nil), rest...)
	}
	return addr, nil
}

// PaymentCredential returns the credential that controls spending.
func (a Address) PaymentCredential() (Credential, error) {
	if a.Type == RewardKey || a.Type == RewardScript {
		return Credential{}, ErrNoPaymentCredential
	}
	return a.Payment, nil
}

// Bytes returns the binary form of the address.
func (a Address) Bytes() []byte {
	buf := make([]byte, 0, 1+HashSize+len(a.Delegation))
	buf = append(buf, byte(a.Type)<<4|a.Network&0x0f)
	buf = append(buf, a.Payment.Hash[:]...)
	return append(buf, a.Delegation...)
}

// String returns the bech32 form of the address.
func (a Address) String() string {
	hrp := testnetHRP
	if a.Network == MainnetNetworkID {
		hrp = mainnetHRP
	}
	// ConvertBits from 8 to 5 with padding and Encode never fail on valid
	// input, the address bytes are always well formed here.
	data, _ := bech32.ConvertBits(a.Bytes(), 8, 5, true)
	s, _ := bech32.Encode(hrp, data)
	return s
}

// Equal compares the binary forms of two addresses.
func (a Address) Equal(other Address) bool {
	return string(a.Bytes()) == string(other.Bytes())
}
