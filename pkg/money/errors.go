package money

import "errors"

var (
	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrOverflow is returned when an operation would overflow int64 minor units.
	ErrOverflow = errors.New("amount exceeds maximum safe integer value")
)
