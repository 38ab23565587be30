package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusApplied TransferStatus = "APPLIED"
)

// TransferRecord is the immutable outcome of an applied transfer.
type TransferRecord struct {
	TransferID     string
	IdempotencyKey string
	FromAccountID  int64
	ToAccountID    int64
	Amount         decimal.Decimal
	Status         TransferStatus
	Timestamp      time.Time
}

// Equal reports whether two records describe the same transfer. Amounts
// are compared by value, so 40 and 40.00 are equal.
func (r TransferRecord) Equal(other TransferRecord) bool {
	return r.TransferID == other.TransferID &&
		r.IdempotencyKey == other.IdempotencyKey &&
		r.FromAccountID == other.FromAccountID &&
		r.ToAccountID == other.ToAccountID &&
		r.Amount.Equal(other.Amount) &&
		r.Status == other.Status &&
		r.Timestamp.Equal(other.Timestamp)
}
