package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
)

type account struct {
	id         int64
	customerID int64
	opening    decimal.Decimal
	createdAt  time.Time

	// guarded by the account's LockManager lock
	balance decimal.Decimal
}

func (a *account) snapshot() domain.Account {
	return domain.Account{
		ID:             a.id,
		CustomerID:     a.customerID,
		Balance:        a.balance,
		OpeningBalance: a.opening,
		CreatedAt:      a.createdAt,
	}
}

// AccountStore owns every account and is the only place a balance changes.
// The map itself is guarded by mu; each balance is guarded by the account's
// lock in the shared LockManager.
type AccountStore struct {
	locks     *LockManager
	customers domain.CustomerRegistry
	clock     func() time.Time

	mu       sync.RWMutex
	accounts map[int64]*account
	lastID   int64
}

func NewAccountStore(locks *LockManager, customers domain.CustomerRegistry, clock func() time.Time) *AccountStore {
	if clock == nil {
		clock = time.Now
	}
	return &AccountStore{
		locks:     locks,
		customers: customers,
		clock:     clock,
		accounts:  make(map[int64]*account),
	}
}

// CreateAccount opens an account for an existing customer. The customer check
// is delegated to the registry and is the only external call the ledger makes.
func (s *AccountStore) CreateAccount(ctx context.Context, customerID int64, initialBalance decimal.Decimal) (int64, error) {
	if !validOpeningBalance(initialBalance) {
		return 0, domain.ErrInvalidAmount
	}

	exists, err := s.customers.CustomerExists(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("check customer %d: %w", customerID, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: %d", domain.ErrUnknownCustomer, customerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	id := s.lastID
	s.accounts[id] = &account{
		id:         id,
		customerID: customerID,
		opening:    initialBalance,
		createdAt:  storageTime(s.clock()),
		balance:    initialBalance,
	}
	return id, nil
}

func (s *AccountStore) lookup(id int64) (*account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *AccountStore) Exists(id int64) bool {
	_, ok := s.lookup(id)
	return ok
}

func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// GetBalance reads one balance under that account's lock only.
func (s *AccountStore) GetBalance(id int64) (decimal.Decimal, error) {
	a, ok := s.lookup(id)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}

	release := s.locks.AcquireSingle(id)
	defer release()
	return a.balance, nil
}

func (s *AccountStore) Account(id int64) (domain.Account, error) {
	a, ok := s.lookup(id)
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}

	release := s.locks.AcquireSingle(id)
	defer release()
	return a.snapshot(), nil
}

// Snapshot returns every account, read while all of their locks are held,
// so the balances form a single consistent cut. Ordered by ID.
func (s *AccountStore) Snapshot() []domain.Account {
	s.mu.RLock()
	held := make([]*account, 0, len(s.accounts))
	ids := make([]int64, 0, len(s.accounts))
	for id, a := range s.accounts {
		held = append(held, a)
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	release := s.locks.AcquireAll(ids...)
	out := make([]domain.Account, 0, len(held))
	for _, a := range held {
		out = append(out, a.snapshot())
	}
	release()

	slices.SortFunc(out, func(a, b domain.Account) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// balanceLocked must only be called while the caller holds id's lock.
func (s *AccountStore) balanceLocked(id int64) (decimal.Decimal, error) {
	a, ok := s.lookup(id)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}
	return a.balance, nil
}

// applyDelta must only be called while the caller holds id's lock.
func (s *AccountStore) applyDelta(id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	a, ok := s.lookup(id)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, id)
	}

	next := a.balance.Add(delta)
	if delta.IsNegative() && next.IsNegative() {
		return a.balance, domain.ErrInsufficientFunds
	}

	a.balance = next
	return next, nil
}

// restore installs a journaled account with its recomputed balance. Only
// used while rebuilding an empty store.
func (s *AccountStore) restore(acct domain.Account, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[acct.ID] = &account{
		id:         acct.ID,
		customerID: acct.CustomerID,
		opening:    acct.OpeningBalance,
		createdAt:  acct.CreatedAt,
		balance:    balance,
	}
	if acct.ID > s.lastID {
		s.lastID = acct.ID
	}
}
