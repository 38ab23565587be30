package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
)

type LedgerService interface {
	CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
	Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	GetBalance(ctx context.Context, accountID int64) (commons.Response[models.BalanceResponse], error)
	GetTransfer(ctx context.Context, idempotencyKey string) (commons.Response[models.TransferResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[models.ListAccountsResponse], error)
}
