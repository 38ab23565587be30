package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/lib/pq"
)

// JournalRepository appends ledger history to ledger_accounts and
// ledger_transfers.
type JournalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) AppendAccount(ctx context.Context, account domain.Account) error {
	const query = `
INSERT INTO ledger_accounts (id, customer_id, opening_balance, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.CustomerID,
		account.OpeningBalance,
		account.CreatedAt,
	); err != nil {
		return fmt.Errorf("journal account %d: %w", account.ID, err)
	}
	return nil
}

func (r *JournalRepository) AppendTransfer(ctx context.Context, record domain.TransferRecord) error {
	const query = `
INSERT INTO ledger_transfers (
	transfer_id,
	idempotency_key,
	from_account_id,
	to_account_id,
	amount,
	status,
	applied_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		record.TransferID,
		record.IdempotencyKey,
		record.FromAccountID,
		record.ToAccountID,
		record.Amount,
		record.Status,
		record.Timestamp,
	)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		logger.Debug("journal transfer already recorded", logger.Fields{
			"transferId":     record.TransferID,
			"idempotencyKey": record.IdempotencyKey,
		})
		return nil
	}
	return fmt.Errorf("journal transfer %s: %w", record.TransferID, err)
}

func (r *JournalRepository) Load(ctx context.Context) ([]domain.Account, []domain.TransferRecord, error) {
	accounts, err := r.loadAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	transfers, err := r.loadTransfers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, transfers, nil
}

func (r *JournalRepository) loadAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, customer_id, opening_balance, created_at
FROM ledger_accounts
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load journaled accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.OpeningBalance, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journaled account: %w", err)
		}
		a.Balance = a.OpeningBalance
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *JournalRepository) loadTransfers(ctx context.Context) ([]domain.TransferRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT transfer_id, idempotency_key, from_account_id, to_account_id, amount, status, applied_at
FROM ledger_transfers
ORDER BY applied_at, transfer_id`)
	if err != nil {
		return nil, fmt.Errorf("load journaled transfers: %w", err)
	}
	defer rows.Close()

	var out []domain.TransferRecord
	for rows.Next() {
		var t domain.TransferRecord
		var status string
		if err := rows.Scan(&t.TransferID, &t.IdempotencyKey, &t.FromAccountID, &t.ToAccountID, &t.Amount, &status, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan journaled transfer: %w", err)
		}
		t.Status = domain.TransferStatus(status)
		t.Timestamp = t.Timestamp.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *JournalRepository) Close() error {
	return r.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
