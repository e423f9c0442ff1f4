package domain

import "errors"

var (
	// ErrValidation is returned when input is malformed and rejected before
	// any mutation happens.
	ErrValidation = errors.New("invalid input")

	// ErrAmountNotPositive is returned when a movement amount is zero or negative.
	ErrAmountNotPositive = errors.New("amount must be positive")

	// ErrWalletNotFound is returned when a referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound is returned when a referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLoanNotFound is returned when a referenced loan does not exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrLoanEntryNotFound is returned when a referenced loan entry does not exist.
	ErrLoanEntryNotFound = errors.New("loan entry not found")

	// ErrPlannedPaymentNotFound is returned when a referenced planned payment does not exist.
	ErrPlannedPaymentNotFound = errors.New("planned payment not found")

	// ErrInvalidTransactionKind is returned for an unknown transaction kind.
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")

	// ErrInvalidLoanDirection is returned for an unknown loan direction.
	ErrInvalidLoanDirection = errors.New("invalid loan direction")

	// ErrInvalidRecurrence is returned for an unknown recurrence kind.
	ErrInvalidRecurrence = errors.New("invalid recurrence kind")

	// ErrDestinationRequired is returned when a transfer lacks a destination wallet.
	ErrDestinationRequired = errors.New("transfer requires a destination wallet")

	// ErrSameWallet is returned when a transfer names the same wallet twice.
	ErrSameWallet = errors.New("transfer source and destination must differ")

	// ErrPartialApplication signals a balance was mutated but the movement
	// record could not be persisted in the same unit of work. It marks an
	// invariant breach and must be logged, never swallowed.
	ErrPartialApplication = errors.New("balance mutated without a matching ledger record")
)
