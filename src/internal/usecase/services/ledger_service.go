package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/ledger"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/metrics"
	"github.com/shopspring/decimal"
)

const msgValidationFailed = "validation failed"

const (
	journalOpAccount  = "account"
	journalOpTransfer = "transfer"
)

type LedgerService struct {
	ledger  *ledger.Ledger
	journal domain.Journal
	metrics *metrics.Metrics
}

// NewLedgerService wires the ledger to its journal. m may be nil.
func NewLedgerService(l *ledger.Ledger, journal domain.Journal, m *metrics.Metrics) *LedgerService {
	return &LedgerService{ledger: l, journal: journal, metrics: m}
}

func (s *LedgerService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("ledger service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("ledger service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse](msgValidationFailed, err.Error()), err
	}

	id, err := s.ledger.CreateAccount(ctx, req.CustomerID, req.InitialBalance)
	if err != nil {
		message, detail := describeFailure(err, "failed to create account")
		logger.Error("ledger service create account failed", err, logger.Fields{
			"customerId": req.CustomerID,
		})
		return commons.ErrorResponse[models.AccountResponse](message, detail), err
	}

	account, err := s.ledger.Account(id)
	if err != nil {
		logger.Error("ledger service create account read back failed", err, logger.Fields{
			"accountId": id,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	if err := s.journal.AppendAccount(context.WithoutCancel(ctx), account); err != nil {
		s.metrics.JournalFailed(journalOpAccount)
		logger.Error("ledger service journal account failed", err, logger.Fields{
			"accountId": id,
		})
	}
	s.metrics.AccountCreated()

	logger.Info("ledger service create account success", logger.Fields{
		"accountId":  account.ID,
		"customerId": account.CustomerID,
	})
	return commons.SuccessResponse("account created successfully", toAccountResponse(account)), nil
}

func (s *LedgerService) Transfer(ctx context.Context, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	started := time.Now()
	logger.Info("ledger service transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		s.metrics.ObserveTransfer(metrics.OutcomeInvalid, started)
		logger.Error("ledger service transfer validation failed", err, nil)
		return commons.ErrorResponse[models.TransferResponse](msgValidationFailed, err.Error()), err
	}

	record, replayed, err := s.ledger.Execute(ctx, req.FromAccountID, req.ToAccountID, req.Amount, req.IdempotencyKey)
	if err != nil {
		s.metrics.ObserveTransfer(transferOutcome(err), started)
		message, detail := describeFailure(err, "failed to transfer funds")
		logger.Error("ledger service transfer failed", err, logger.Fields{
			"fromAccountId":  req.FromAccountID,
			"toAccountId":    req.ToAccountID,
			"idempotencyKey": req.IdempotencyKey,
		})
		return commons.ErrorResponse[models.TransferResponse](message, detail), err
	}

	// the ledger has applied the transfer; a replay re-appends so an earlier
	// failed write is repaired, and the journal ignores duplicates
	s.journalTransfer(ctx, record)

	if replayed {
		s.metrics.ObserveTransfer(metrics.OutcomeReplayed, started)
		logger.Info("ledger service transfer replayed", logger.Fields{
			"transferId":     record.TransferID,
			"idempotencyKey": record.IdempotencyKey,
		})
		return commons.SuccessResponse("transfer already processed", toTransferResponse(record, true)), nil
	}

	s.metrics.ObserveTransfer(metrics.OutcomeApplied, started)

	logger.Info("ledger service transfer success", logger.Fields{
		"transferId":    record.TransferID,
		"fromAccountId": record.FromAccountID,
		"toAccountId":   record.ToAccountID,
		"amount":        record.Amount.String(),
	})
	return commons.SuccessResponse("transfer successful", toTransferResponse(record, false)), nil
}

// journalTransfer writes record even if the request was cancelled after the
// ledger applied it.
func (s *LedgerService) journalTransfer(ctx context.Context, record domain.TransferRecord) {
	if err := s.journal.AppendTransfer(context.WithoutCancel(ctx), record); err != nil {
		s.metrics.JournalFailed(journalOpTransfer)
		logger.Error("ledger service journal transfer failed", err, logger.Fields{
			"transferId":     record.TransferID,
			"idempotencyKey": record.IdempotencyKey,
		})
	}
}

func (s *LedgerService) GetBalance(_ context.Context, accountID int64) (commons.Response[models.BalanceResponse], error) {
	logger.Info("ledger service get balance request", logger.Fields{
		"accountId": accountID,
	})

	balance, err := s.ledger.GetBalance(accountID)
	if err != nil {
		message, detail := describeFailure(err, "failed to get balance")
		return commons.ErrorResponse[models.BalanceResponse](message, detail), err
	}

	return commons.SuccessResponse("balance fetched successfully", models.BalanceResponse{
		AccountID: accountID,
		Balance:   balance.StringFixed(2),
	}), nil
}

func (s *LedgerService) GetTransfer(_ context.Context, idempotencyKey string) (commons.Response[models.TransferResponse], error) {
	logger.Info("ledger service get transfer request", logger.Fields{
		"idempotencyKey": idempotencyKey,
	})

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		err := domain.ErrInvalidIdempotencyKey
		return commons.ErrorResponse[models.TransferResponse](msgValidationFailed, err.Error()), err
	}

	record, ok := s.ledger.LookupTransfer(key)
	if !ok {
		err := fmt.Errorf("transfer %q: %w", key, domain.ErrRecordNotFound)
		return commons.ErrorResponse[models.TransferResponse]("transfer not found"), err
	}

	return commons.SuccessResponse("transfer fetched successfully", toTransferResponse(record, false)), nil
}

func (s *LedgerService) ListAccounts(_ context.Context) (commons.Response[models.ListAccountsResponse], error) {
	logger.Info("ledger service list accounts request", nil)

	accounts := s.ledger.Accounts()
	response := models.ListAccountsResponse{
		Accounts: make([]models.AccountResponse, 0, len(accounts)),
	}
	total := decimal.Zero
	for _, a := range accounts {
		response.Accounts = append(response.Accounts, toAccountResponse(a))
		total = total.Add(a.Balance)
	}
	response.TotalBalance = total.StringFixed(2)

	return commons.SuccessResponse("accounts fetched successfully", response), nil
}

// describeFailure turns a ledger error into the envelope message and detail.
func describeFailure(err error, fallback string) (string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return msgValidationFailed, err.Error()
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account not found", err.Error()
	case errors.Is(err, domain.ErrUnknownCustomer):
		return "unknown customer", err.Error()
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient funds", err.Error()
	case errors.Is(err, ledger.ErrClosed):
		return "ledger unavailable", "The ledger is shutting down"
	default:
		return fallback, "Unable to complete request right now"
	}
}

func transferOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return metrics.OutcomeInsufficientFunds
	case errors.Is(err, domain.ErrAccountNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSameAccountTransfer),
		errors.Is(err, domain.ErrInvalidIdempotencyKey):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

func toAccountResponse(a domain.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:             a.ID,
		CustomerID:     a.CustomerID,
		Balance:        a.Balance.StringFixed(2),
		OpeningBalance: a.OpeningBalance.StringFixed(2),
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

func toTransferResponse(r domain.TransferRecord, replayed bool) models.TransferResponse {
	return models.TransferResponse{
		TransferID:     r.TransferID,
		IdempotencyKey: r.IdempotencyKey,
		FromAccountID:  r.FromAccountID,
		ToAccountID:    r.ToAccountID,
		Amount:         r.Amount.StringFixed(2),
		Status:         string(r.Status),
		Timestamp:      r.Timestamp.Format(time.RFC3339Nano),
		Replayed:       replayed,
	}
}
