package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type CreateAccountRequest struct {
	CustomerID     int64           `json:"customerId"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if r.CustomerID <= 0 {
		errs = append(errs, "customerId must be a positive integer")
	}
	if r.InitialBalance.IsNegative() {
		errs = append(errs, "initialBalance cannot be negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID             int64  `json:"id"`
	CustomerID     int64  `json:"customerId"`
	Balance        string `json:"balance"`
	OpeningBalance string `json:"openingBalance"`
	CreatedAt      string `json:"createdAt"`
}

type BalanceResponse struct {
	AccountID int64  `json:"accountId"`
	Balance   string `json:"balance"`
}

type ListAccountsResponse struct {
	Accounts     []AccountResponse `json:"accounts"`
	TotalBalance string            `json:"totalBalance"`
}
