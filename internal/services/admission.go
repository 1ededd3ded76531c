package services

import (
	"context"
	"sync"
	"time"
)

// LockRegistry serializes ingestion per queue. Each queue ID maps to a
// one-slot channel so waiters can give up when their context ends.
//
// Entries are created on first use and never removed. That is fine while
// queue IDs are administrative data; a deployment that churns through many
// queues would need eviction here.
type LockRegistry struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLockRegistry returns an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{slots: make(map[string]chan struct{})}
}

func (r *LockRegistry) slot(queueID string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.slots[queueID]
	if !ok {
		ch = make(chan struct{}, 1)
		r.slots[queueID] = ch
	}
	return ch
}

// Acquire blocks until the queue's lock is held or ctx is done. The
// returned release func is safe to call more than once.
func (r *LockRegistry) Acquire(ctx context.Context, queueID string) (func(), error) {
	ch := r.slot(queueID)
	start := time.Now()
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	admissionWait.Observe(time.Since(start).Seconds())

	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}

// Len reports how many queues have a lock entry.
func (r *LockRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slots)
}
