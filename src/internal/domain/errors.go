package domain

import "errors"

var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero with at most 2 decimal places")
	ErrSameAccountTransfer   = errors.New("source and destination account must differ")
	ErrAccountNotFound       = errors.New("account not found")
	ErrUnknownCustomer       = errors.New("customer does not exist")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidIdempotencyKey = errors.New("idempotency key is required")
	ErrRecordNotFound        = errors.New("record not found")

	// ErrDuplicateKey signals that an idempotency key was recorded twice
	// with different records. It is a defect, never a user outcome.
	ErrDuplicateKey = errors.New("idempotency key already recorded with a different transfer")
)
