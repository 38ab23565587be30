package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcquireOrderedExcludesOverlappingPairs(t *testing.T) {
	m := NewLockManager()

	release := m.AcquireOrdered(2, 1)
	acquired := make(chan struct{})
	go func() {
		r := m.AcquireSingle(1)
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("account 1 was lockable while held by an ordered pair")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("account 1 not released")
	}
}

func TestAcquireOrderedDisjointPairsRunInParallel(t *testing.T) {
	m := NewLockManager()
	release := m.AcquireOrdered(1, 2)
	defer release()

	done := make(chan struct{})
	go func() {
		m.AcquireOrdered(3, 4)()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint pair blocked")
	}
}

func TestAcquireAllReleaseIsIdempotent(t *testing.T) {
	m := NewLockManager()
	release := m.AcquireAll(5, 3, 5, 1)
	release()
	assert.NotPanics(t, release)

	m.AcquireAll(1, 3, 5)()
}

func TestAcquireOrderedReversedArgumentsNoDeadlock(t *testing.T) {
	m := NewLockManager()
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); m.AcquireOrdered(10, 20)() }()
		go func() { defer wg.Done(); m.AcquireOrdered(20, 10)() }()
	}
	waitOrFail(t, &wg, 5*time.Second)
}
