package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// TransferEngine moves funds between two accounts as one all-or-nothing step.
type TransferEngine struct {
	store    *AccountStore
	locks    *LockManager
	registry *IdempotencyRegistry
	inflight singleflight.Group

	clock  func() time.Time
	newID  func() string
	strict bool
}

type EngineOptions struct {
	Clock         func() time.Time
	NewTransferID func() string

	// Strict makes an idempotency invariant violation panic instead of
	// being logged.
	Strict bool
}

func NewTransferEngine(store *AccountStore, locks *LockManager, registry *IdempotencyRegistry, opts EngineOptions) *TransferEngine {
	e := &TransferEngine{
		store:    store,
		locks:    locks,
		registry: registry,
		clock:    opts.Clock,
		newID:    opts.NewTransferID,
		strict:   opts.Strict,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.NewString() }
	}
	return e
}

type outcome struct {
	record   domain.TransferRecord
	replayed bool
}

// Transfer applies amount from fromID to toID exactly once per idempotency key.
func (e *TransferEngine) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal, idempotencyKey string) (domain.TransferRecord, error) {
	rec, _, err := e.Execute(ctx, fromID, toID, amount, idempotencyKey)
	return rec, err
}

// Execute is Transfer that also reports whether the record came from an
// earlier request with the same key.
//
// Concurrent calls sharing a key are collapsed so only one of them can reach
// the locked region; the others receive its outcome. A waiter is never
// failed by another caller's cancelled context.
func (e *TransferEngine) Execute(ctx context.Context, fromID, toID int64, amount decimal.Decimal, idempotencyKey string) (domain.TransferRecord, bool, error) {
	if !validTransferAmount(amount) {
		return domain.TransferRecord{}, false, domain.ErrInvalidAmount
	}
	if fromID == toID {
		return domain.TransferRecord{}, false, domain.ErrSameAccountTransfer
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return domain.TransferRecord{}, false, domain.ErrInvalidIdempotencyKey
	}

	if rec, ok := e.registry.Lookup(key); ok {
		return rec, true, nil
	}

	for {
		out, err := e.join(ctx, fromID, toID, amount, key)
		if errors.Is(err, errRejoin) {
			continue
		}
		if err != nil {
			return domain.TransferRecord{}, false, err
		}
		return out.record, out.replayed, nil
	}
}

// errRejoin means the flight failed only because another caller's context
// ended; the caller should start over.
var errRejoin = errors.New("rejoin transfer flight")

// join waits on the flight for key, starting it if none is running. A caller
// whose context ends stops waiting unless the flight runs on its context.
func (e *TransferEngine) join(ctx context.Context, fromID, toID int64, amount decimal.Decimal, key string) (outcome, error) {
	var led atomic.Bool
	ch := e.inflight.DoChan(key, func() (any, error) {
		led.Store(true)
		// a request for this key may have finished between Lookup and DoChan
		if rec, ok := e.registry.Lookup(key); ok {
			return outcome{record: rec, replayed: true}, nil
		}
		rec, err := e.apply(ctx, fromID, toID, amount, key)
		if err != nil {
			return nil, err
		}
		return outcome{record: rec}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		if !led.Load() {
			return outcome{}, ctx.Err()
		}
		res = <-ch
	}

	if res.Err != nil {
		if !led.Load() && isContextErr(res.Err) && ctx.Err() == nil {
			return outcome{}, errRejoin
		}
		return outcome{}, res.Err
	}

	out := res.Val.(outcome)
	out.replayed = out.replayed || !led.Load()
	return out, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *TransferEngine) apply(ctx context.Context, fromID, toID int64, amount decimal.Decimal, key string) (domain.TransferRecord, error) {
	if !e.store.Exists(fromID) {
		return domain.TransferRecord{}, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, fromID)
	}
	if !e.store.Exists(toID) {
		return domain.TransferRecord{}, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, toID)
	}

	// last point at which the caller can walk away
	if err := ctx.Err(); err != nil {
		return domain.TransferRecord{}, err
	}

	release := e.locks.AcquireOrdered(fromID, toID)
	defer release()

	balance, err := e.store.balanceLocked(fromID)
	if err != nil {
		return domain.TransferRecord{}, err
	}
	if balance.LessThan(amount) {
		return domain.TransferRecord{}, domain.ErrInsufficientFunds
	}

	if _, err := e.store.applyDelta(fromID, amount.Neg()); err != nil {
		return domain.TransferRecord{}, err
	}
	if _, err := e.store.applyDelta(toID, amount); err != nil {
		// unreachable for a positive credit; undo the debit anyway
		_, _ = e.store.applyDelta(fromID, amount)
		return domain.TransferRecord{}, err
	}

	rec := domain.TransferRecord{
		TransferID:     e.newID(),
		IdempotencyKey: key,
		FromAccountID:  fromID,
		ToAccountID:    toID,
		Amount:         amount,
		Status:         domain.TransferStatusApplied,
		Timestamp:      storageTime(e.clock()),
	}
	return e.record(key, rec), nil
}

// record registers rec while the transfer's locks are still held. A
// conflicting record means the lookup-before-record protocol was broken.
func (e *TransferEngine) record(key string, rec domain.TransferRecord) domain.TransferRecord {
	err := e.registry.Record(key, rec)
	if err == nil {
		return rec
	}

	if e.strict {
		panic(err)
	}

	existing, _ := e.registry.Lookup(key)
	logger.Error("ledger idempotency invariant violated", err, logger.Fields{
		"idempotencyKey":     key,
		"existingTransferId": existing.TransferID,
		"appliedTransferId":  rec.TransferID,
		"fromAccountId":      rec.FromAccountID,
		"toAccountId":        rec.ToAccountID,
		"amount":             rec.Amount.String(),
	})
	return existing
}
