package cardano

import "errors"

var (
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("invalid address")
	// ErrNoPaymentCredential is returned for reward addresses, which carry a
	// stake credential only.
	ErrNoPaymentCredential = errors.New("address has no payment credential")
	// ErrInvalidSigningKey ...
	ErrInvalidSigningKey = errors.New("invalid signing key")
	// ErrInsufficientValue is returned when subtracting more than a value
	// holds for some asset.
	ErrInsufficientValue = errors.New("insufficient value")
	// ErrInvalidInput is returned when parsing a malformed "txhash#index"
	// reference.
	ErrInvalidInput = errors.New("invalid transaction input")
	// ErrInvalidAssetID ...
	ErrInvalidAssetID = errors.New("invalid asset id")
)
