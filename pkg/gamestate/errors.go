package gamestate

import "errors"

var (
	// ErrInvalidDatum is returned whenever on-chain data does not have the
	// exact shape of a game datum. Every decode failure wraps it.
	ErrInvalidDatum = errors.New("invalid game datum")
	// ErrInvalidCredentialLength ...
	ErrInvalidCredentialLength = errors.New("payment credential must be 28 bytes")
)
