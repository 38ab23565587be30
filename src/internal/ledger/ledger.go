// Package ledger holds the account balances and the transfer engine that
// moves funds between them. Every balance change goes through a per-account
// lock taken in canonical ID order; there is no global lock on the hot path.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrClosed      = errors.New("ledger is closed")
	ErrNotEmpty    = errors.New("restore requires an empty ledger")
	ErrNoCustomers = errors.New("customer registry is required")
)

type Options struct {
	Customers        domain.CustomerRegistry
	StrictInvariants bool
	Clock            func() time.Time
	NewTransferID    func() string
}

// Ledger wires the store, lock manager, idempotency registry and engine into
// one object with an explicit lifecycle.
type Ledger struct {
	store    *AccountStore
	registry *IdempotencyRegistry
	engine   *TransferEngine
	reader   BalanceReader
	closed   atomic.Bool
}

func New(opts Options) (*Ledger, error) {
	if opts.Customers == nil {
		return nil, ErrNoCustomers
	}

	locks := NewLockManager()
	store := NewAccountStore(locks, opts.Customers, opts.Clock)
	registry := NewIdempotencyRegistry()
	engine := NewTransferEngine(store, locks, registry, EngineOptions{
		Clock:         opts.Clock,
		NewTransferID: opts.NewTransferID,
		Strict:        opts.StrictInvariants,
	})

	return &Ledger{
		store:    store,
		registry: registry,
		engine:   engine,
		reader:   NewBalanceReader(store),
	}, nil
}

func (l *Ledger) CreateAccount(ctx context.Context, customerID int64, initialBalance decimal.Decimal) (int64, error) {
	if l.closed.Load() {
		return 0, ErrClosed
	}
	return l.store.CreateAccount(ctx, customerID, initialBalance)
}

func (l *Ledger) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, idempotencyKey string) (domain.TransferRecord, error) {
	rec, _, err := l.Execute(ctx, fromID, toID, amount, idempotencyKey)
	return rec, err
}

func (l *Ledger) Execute(ctx context.Context, fromID, toID int64, amount decimal.Decimal, idempotencyKey string) (domain.TransferRecord, bool, error) {
	if l.closed.Load() {
		return domain.TransferRecord{}, false, ErrClosed
	}
	return l.engine.Execute(ctx, fromID, toID, amount, idempotencyKey)
}

func (l *Ledger) GetBalance(accountID int64) (decimal.Decimal, error) {
	return l.reader.GetBalance(accountID)
}

func (l *Ledger) Account(accountID int64) (domain.Account, error) {
	return l.store.Account(accountID)
}

func (l *Ledger) Accounts() []domain.Account {
	return l.store.Snapshot()
}

// TotalBalance sums a consistent snapshot of every account.
func (l *Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.store.Snapshot() {
		total = total.Add(a.Balance)
	}
	return total
}

func (l *Ledger) LookupTransfer(idempotencyKey string) (domain.TransferRecord, bool) {
	return l.registry.Lookup(idempotencyKey)
}

// Close stops the ledger from accepting new mutations. Reads keep working.
func (l *Ledger) Close() error {
	l.closed.Store(true)
	return nil
}

// Restore rebuilds an empty ledger from journaled history. Accounts start at
// their opening balance and every transfer is replayed as a pair of deltas;
// since addition commutes the order of transfers does not matter. Nothing is
// installed unless the whole history is consistent.
func (l *Ledger) Restore(accounts []domain.Account, transfers []domain.TransferRecord) error {
	if l.store.Len() > 0 || l.registry.Len() > 0 {
		return ErrNotEmpty
	}

	balances := make(map[int64]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		if _, dup := balances[a.ID]; dup {
			return fmt.Errorf("restore account %d: duplicate account", a.ID)
		}
		if !validOpeningBalance(a.OpeningBalance) {
			return fmt.Errorf("restore account %d: %w", a.ID, domain.ErrInvalidAmount)
		}
		balances[a.ID] = a.OpeningBalance
	}

	seen := make(map[string]domain.TransferRecord, len(transfers))
	replay := make([]domain.TransferRecord, 0, len(transfers))
	for _, t := range transfers {
		if prev, ok := seen[t.IdempotencyKey]; ok {
			if prev.Equal(t) {
				continue
			}
			return fmt.Errorf("restore transfer %s: %w", t.TransferID, domain.ErrDuplicateKey)
		}
		if !validTransferAmount(t.Amount) {
			return fmt.Errorf("restore transfer %s: %w", t.TransferID, domain.ErrInvalidAmount)
		}
		from, okFrom := balances[t.FromAccountID]
		to, okTo := balances[t.ToAccountID]
		if !okFrom || !okTo {
			return fmt.Errorf("restore transfer %s: %w", t.TransferID, domain.ErrAccountNotFound)
		}
		balances[t.FromAccountID] = from.Sub(t.Amount)
		balances[t.ToAccountID] = to.Add(t.Amount)
		seen[t.IdempotencyKey] = t
		replay = append(replay, t)
	}

	for id, b := range balances {
		if b.IsNegative() {
			return fmt.Errorf("restore account %d: %w", id, domain.ErrInsufficientFunds)
		}
	}

	for _, a := range accounts {
		l.store.restore(a, balances[a.ID])
	}
	for _, t := range replay {
		if err := l.registry.Record(t.IdempotencyKey, t); err != nil {
			return fmt.Errorf("restore transfer %s: %w", t.TransferID, err)
		}
	}
	return nil
}

// storageTime is t in UTC at the microsecond precision the journal keeps, so
// a record restored from the journal equals the one first returned.
func storageTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
