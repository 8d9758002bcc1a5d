package cardano

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// cborSeedPrefix is the CBOR header of a 32 bytes byte string, which is how
// cardano-cli envelopes wrap signing keys.
const cborSeedPrefix = "5820"

// SigningKey is an ed25519 payment signing key.
type SigningKey struct {
	priv ed25519.PrivateKey
}

// NewSigningKey derives a key from its 32 bytes seed.
func NewSigningKey(seed []byte) (SigningKey, error) {
	if len(seed) != ed25519.SeedSize {
		return SigningKey{}, fmt.Errorf(
			"%w: seed must be %d bytes, got %d",
			ErrInvalidSigningKey, ed25519.SeedSize, len(seed),
		)
	}
	return SigningKey{ed25519.NewKeyFromSeed(seed)}, nil
}

// ParseSigningKey accepts either a bare hex seed, the cborHex field of a
// cardano-cli key envelope, or the whole JSON envelope.
func ParseSigningKey(s string) (SigningKey, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var envelope struct {
			CborHex string `json:"cborHex"`
		}
		if err := json.Unmarshal([]byte(s), &envelope); err != nil {
			return SigningKey{}, fmt.Errorf("%w: %s", ErrInvalidSigningKey, err)
		}
		s = envelope.CborHex
	}
	if len(s) == 2*(ed25519.SeedSize+2) && strings.HasPrefix(s, cborSeedPrefix) {
		s = s[len(cborSeedPrefix):]
	}
	seed, err := hex.DecodeString(s)
	if err != nil {
		return SigningKey{}, fmt.Errorf("%w: %s", ErrInvalidSigningKey, err)
	}
	return NewSigningKey(seed)
}

// PublicKey returns the verification key bytes.
func (k SigningKey) PublicKey() []byte {
	return []byte(k.priv.Public().(ed25519.PublicKey))
}

// Hash returns the payment key hash.
func (k SigningKey) Hash() Hash28 {
	return Blake2b224(k.PublicKey())
}

// Sign signs msg, in practice a transaction body hash.
func (k SigningKey) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Address returns the enterprise address of the key on the given network.
func (k SigningKey) Address(network uint8) Address {
	return NewEnterpriseAddress(network, KeyCredential(k.Hash()))
}

// Verify checks an ed25519 signature.
func Verify(publicKey, msg, sig []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), msg, sig)
}
