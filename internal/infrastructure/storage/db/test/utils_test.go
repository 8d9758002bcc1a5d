package db_test

import (
	"crypto/rand"
	"encoding/hex"
)

func randomNodeName() string {
	return "node-" + randomHex(4)
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
