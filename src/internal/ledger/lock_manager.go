package ledger

import (
	"slices"
	"sync"
)

// LockManager hands out per-account exclusive locks. Multi-account
// acquisition always proceeds in ascending account ID order, which is a
// total order over every account, so no two callers can wait on each other
// in a cycle.
type LockManager struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[int64]*sync.Mutex)}
}

func (m *LockManager) lockFor(id int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// AcquireSingle locks one account and returns its release function.
func (m *LockManager) AcquireSingle(id int64) func() {
	l := m.lockFor(id)
	l.Lock()
	return l.Unlock
}

// AcquireOrdered locks both accounts, smaller ID first, regardless of the
// argument order.
func (m *LockManager) AcquireOrdered(idA, idB int64) func() {
	return m.AcquireAll(idA, idB)
}

// AcquireAll locks every listed account in canonical order. Duplicate IDs
// are locked once. The returned release function is safe to call more
// than once.
func (m *LockManager) AcquireAll(ids ...int64) func() {
	ordered := slices.Clone(ids)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, id := range ordered {
		l := m.lockFor(id)
		l.Lock()
		held = append(held, l)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].Unlock()
			}
		})
	}
}
