package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a ledger account. CustomerID is a weak reference into the
// customer registry; the ledger never reads or mutates customer data.
type Account struct {
	ID             int64
	CustomerID     int64
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
}
