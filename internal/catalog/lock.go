package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// defaultLockTimeout bounds how long a mutating operation waits for its
// scope before giving up with ErrLockTimeout.
const defaultLockTimeout = 10 * time.Second

// LockManager hands out the CatalogLock: a named, table-or-database-scoped
// mutual exclusion token. At most one holder per scope at a time. Acquire
// blocks for a bounded time; the returned release must be called
// unconditionally (deferred) by the holder.
type LockManager interface {
	Acquire(ctx context.Context, scope string) (release func(), err error)
}

// memoryLocks is the in-process LockManager used when lock.enabled is set.
type memoryLocks struct {
	mu      sync.Mutex
	scopes  map[string]chan struct{}
	timeout time.Duration
}

// NewMemoryLocks returns an in-process lock manager. A non-positive timeout
// falls back to the default.
func NewMemoryLocks(timeout time.Duration) LockManager {
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	return &memoryLocks{
		scopes:  make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (m *memoryLocks) slot(scope string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.scopes[scope]
	if !ok {
		ch = make(chan struct{}, 1)
		m.scopes[scope] = ch
	}

	return ch
}

// Acquire takes the token for scope, waiting up to the configured timeout.
func (m *memoryLocks) Acquire(ctx context.Context, scope string) (func(), error) {
	ch := m.slot(scope)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: scope %q", ErrLockTimeout, scope)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// noopLocks is used when lock.enabled is false.
type noopLocks struct{}

func (noopLocks) Acquire(ctx context.Context, scope string) (func(), error) {
	return func() {}, nil
}
