package cardano

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the length of key and script hashes.
const HashSize = 28

// Hash28 is a blake2b-224 digest identifying a key or a script.
type Hash28 [HashSize]byte

func (h Hash28) String() string {
	return hex.EncodeToString(h[:])
}

// Blake2b224 hashes data into a key/script hash.
func Blake2b224(data ...[]byte) Hash28 {
	// New only fails for sizes out of 1..64 or keys longer than 64 bytes.
	hasher, _ := blake2b.New(HashSize, nil)
	for _, d := range data {
		hasher.Write(d)
	}
	var h Hash28
	copy(h[:], hasher.Sum(nil))
	return h
}

// Blake2b256 hashes data into a transaction or datum hash.
func Blake2b256(data ...[]byte) [32]byte {
	hasher, _ := blake2b.New256(nil)
	for _, d := range data {
		hasher.Write(d)
	}
	var h [32]byte
	copy(h[:], hasher.Sum(nil))
	return h
}
