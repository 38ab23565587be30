package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	FromAccountID  int64           `json:"fromAccountId"`
	ToAccountID    int64           `json:"toAccountId"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if r.FromAccountID <= 0 {
		errs = append(errs, "fromAccountId must be a positive integer")
	}
	if r.ToAccountID <= 0 {
		errs = append(errs, "toAccountId must be a positive integer")
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, "amount must be greater than zero")
	}
	if strings.TrimSpace(r.IdempotencyKey) == "" {
		errs = append(errs, "idempotencyKey is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransferResponse struct {
	TransferID     string `json:"transferId"`
	IdempotencyKey string `json:"idempotencyKey"`
	FromAccountID  int64  `json:"fromAccountId"`
	ToAccountID    int64  `json:"toAccountId"`
	Amount         string `json:"amount"`
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Replayed       bool   `json:"replayed"`
}
