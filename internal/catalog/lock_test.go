package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocksMutualExclusion(t *testing.T) {
	locks := NewMemoryLocks(time.Second)
	ctx := context.Background()

	release, err := locks.Acquire(ctx, "table/db.t")
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		acquired = make(chan struct{})
	)

	wg.Add(1)

	go func() {
		defer wg.Done()

		second, err := locks.Acquire(ctx, "table/db.t")
		assert.NoError(t, err)

		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the scope while it was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	wg.Wait()

	select {
	case <-acquired:
	default:
		t.Fatal("second holder never acquired the scope after release")
	}
}

func TestMemoryLocksScopesAreIndependent(t *testing.T) {
	locks := NewMemoryLocks(time.Second)
	ctx := context.Background()

	releaseA, err := locks.Acquire(ctx, "table/db.a")
	require.NoError(t, err)

	defer releaseA()

	releaseB, err := locks.Acquire(ctx, "table/db.b")
	require.NoError(t, err)
	releaseB()
}

func TestMemoryLocksTimeout(t *testing.T) {
	locks := NewMemoryLocks(20 * time.Millisecond)
	ctx := context.Background()

	release, err := locks.Acquire(ctx, "database/db")
	require.NoError(t, err)

	defer release()

	_, err = locks.Acquire(ctx, "database/db")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestMemoryLocksContextCancellation(t *testing.T) {
	locks := NewMemoryLocks(time.Minute)

	release, err := locks.Acquire(context.Background(), "database/db")
	require.NoError(t, err)

	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locks.Acquire(ctx, "database/db")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoopLocksNeverBlock(t *testing.T) {
	locks := noopLocks{}
	ctx := context.Background()

	first, err := locks.Acquire(ctx, "table/db.t")
	require.NoError(t, err)

	second, err := locks.Acquire(ctx, "table/db.t")
	require.NoError(t, err)

	first()
	second()
}
