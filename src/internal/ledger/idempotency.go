package ledger

import (
	"fmt"
	"sync"

	"github.com/api-sage/ledger-engine/src/internal/domain"
)

// IdempotencyRegistry remembers applied transfers by client key.
type IdempotencyRegistry struct {
	mu      sync.RWMutex
	records map[string]domain.TransferRecord
}

func NewIdempotencyRegistry() *IdempotencyRegistry {
	return &IdempotencyRegistry{records: make(map[string]domain.TransferRecord)}
}

func (r *IdempotencyRegistry) Lookup(key string) (domain.TransferRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	return rec, ok
}

// Record stores rec under key. Recording the same record again is a no-op;
// recording a different one fails with ErrDuplicateKey.
func (r *IdempotencyRegistry) Record(key string, rec domain.TransferRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[key]; ok {
		if existing.Equal(rec) {
			return nil
		}
		return fmt.Errorf("%w: %q", domain.ErrDuplicateKey, key)
	}

	r.records[key] = rec
	return nil
}

func (r *IdempotencyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
