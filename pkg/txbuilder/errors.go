package txbuilder

import "errors"

var (
	// ErrNoAdminUTxO is returned when the snapshot holds no admin owned
	// output with a positive lovelace balance.
	ErrNoAdminUTxO = errors.New("no admin utxo found")
	// ErrNoCollateral is returned when no admin output can back a script
	// spend as collateral.
	ErrNoCollateral = errors.New("no collateral utxo found")
	// ErrNoGameUTxO is returned when nothing is locked at the game validator.
	ErrNoGameUTxO = errors.New("no game utxo found at validator address")
	// ErrInvalidDatum is returned when the game output datum is missing or
	// does not decode as a game state.
	ErrInvalidDatum = errors.New("invalid game datum")
	// ErrInvalidGameState is returned when the requested transition is not
	// allowed from the current on-chain state.
	ErrInvalidGameState = errors.New("invalid game state for transition")
	// ErrInsufficientFunds is returned when the admin input cannot cover the
	// outputs of a new game.
	ErrInsufficientFunds = errors.New("insufficient admin funds")
	// ErrInvalidPlayer is returned for player addresses without a payment
	// key hash.
	ErrInvalidPlayer = errors.New("invalid player address")
	// ErrNoCommitInputs ...
	ErrNoCommitInputs = errors.New("no inputs to commit")
)
