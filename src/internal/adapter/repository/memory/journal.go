package memory

import (
	"context"
	"sync"

	"github.com/api-sage/ledger-engine/src/internal/domain"
)

// Journal keeps ledger history for the life of the process. It gives the
// memory driver the same append/load contract as the durable backends.
type Journal struct {
	mu        sync.Mutex
	accounts  []domain.Account
	transfers []domain.TransferRecord
	seenAcct  map[int64]struct{}
	seenKey   map[string]struct{}
}

func NewJournal() *Journal {
	return &Journal{
		seenAcct: make(map[int64]struct{}),
		seenKey:  make(map[string]struct{}),
	}
}

func (j *Journal) AppendAccount(_ context.Context, account domain.Account) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.seenAcct[account.ID]; ok {
		return nil
	}
	j.seenAcct[account.ID] = struct{}{}
	j.accounts = append(j.accounts, account)
	return nil
}

func (j *Journal) AppendTransfer(_ context.Context, record domain.TransferRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.seenKey[record.IdempotencyKey]; ok {
		return nil
	}
	j.seenKey[record.IdempotencyKey] = struct{}{}
	j.transfers = append(j.transfers, record)
	return nil
}

func (j *Journal) Load(_ context.Context) ([]domain.Account, []domain.TransferRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	accounts := make([]domain.Account, len(j.accounts))
	copy(accounts, j.accounts)
	transfers := make([]domain.TransferRecord, len(j.transfers))
	copy(transfers, j.transfers)
	return accounts, transfers, nil
}

func (j *Journal) Close() error { return nil }
