package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
)

const timeLayout = time.RFC3339Nano

type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) AppendAccount(ctx context.Context, account domain.Account) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO ledger_accounts (id, customer_id, opening_balance, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING`,
		account.ID,
		account.CustomerID,
		account.OpeningBalance.String(),
		account.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("journal account %d: %w", account.ID, err)
	}
	return nil
}

// AppendTransfer ignores a record whose key is already journaled.
func (j *Journal) AppendTransfer(ctx context.Context, record domain.TransferRecord) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO ledger_transfers (transfer_id, idempotency_key, from_account_id, to_account_id, amount, status, applied_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`,
		record.TransferID,
		record.IdempotencyKey,
		record.FromAccountID,
		record.ToAccountID,
		record.Amount.String(),
		string(record.Status),
		record.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("journal transfer %s: %w", record.TransferID, err)
	}
	return nil
}

func (j *Journal) Load(ctx context.Context) ([]domain.Account, []domain.TransferRecord, error) {
	accounts, err := j.loadAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	transfers, err := j.loadTransfers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, transfers, nil
}

func (j *Journal) loadAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT id, customer_id, opening_balance, created_at FROM ledger_accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load journaled accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var (
			a       domain.Account
			opening string
			created string
		)
		if err := rows.Scan(&a.ID, &a.CustomerID, &opening, &created); err != nil {
			return nil, fmt.Errorf("scan journaled account: %w", err)
		}
		if a.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
			return nil, fmt.Errorf("account %d opening balance: %w", a.ID, err)
		}
		if a.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("account %d created_at: %w", a.ID, err)
		}
		a.Balance = a.OpeningBalance
		out = append(out, a)
	}
	return out, rows.Err()
}

func (j *Journal) loadTransfers(ctx context.Context) ([]domain.TransferRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT transfer_id, idempotency_key, from_account_id, to_account_id, amount, status, applied_at
FROM ledger_transfers
ORDER BY applied_at, transfer_id`)
	if err != nil {
		return nil, fmt.Errorf("load journaled transfers: %w", err)
	}
	defer rows.Close()

	var out []domain.TransferRecord
	for rows.Next() {
		var (
			t       domain.TransferRecord
			amount  string
			status  string
			applied string
		)
		if err := rows.Scan(&t.TransferID, &t.IdempotencyKey, &t.FromAccountID, &t.ToAccountID, &amount, &status, &applied); err != nil {
			return nil, fmt.Errorf("scan journaled transfer: %w", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transfer %s amount: %w", t.TransferID, err)
		}
		if t.Timestamp, err = time.Parse(timeLayout, applied); err != nil {
			return nil, fmt.Errorf("transfer %s applied_at: %w", t.TransferID, err)
		}
		t.Status = domain.TransferStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
