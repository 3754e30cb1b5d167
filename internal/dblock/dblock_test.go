package dblock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openedu-labs/coursedb/pkg/types"
)

func TestLock_AcquireRelease(t *testing.T) {
	l := New(t.TempDir())

	h, err := l.Acquire(context.Background())
	require.NoError(t, err)

	// The lock file exists at a well-known location while held.
	_, err = os.Stat(l.Path())
	assert.NoError(t, err)

	require.NoError(t, h.Release())

	// Release is idempotent.
	assert.NoError(t, h.Release())
}

func TestLock_TimeoutWhileHeld(t *testing.T) {
	l := New(t.TempDir())

	h, err := l.Acquire(context.Background())
	require.NoError(t, err)
	defer h.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx)
	assert.ErrorIs(t, err, types.ErrLockTimeout)
}

func TestLock_ReacquireAfterRelease(t *testing.T) {
	l := New(t.TempDir())

	h, err := l.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.Release())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	h2, err := l.Acquire(ctx)
	require.NoError(t, err)
	assert.NoError(t, h2.Release())
}

func TestLock_SeparateLockValuesConflict(t *testing.T) {
	dir := t.TempDir()

	// Two Lock values over the same path model two independent workers.
	a := New(dir)
	b := New(dir)

	h, err := a.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = b.Acquire(ctx)
	assert.ErrorIs(t, err, types.ErrLockTimeout)

	require.NoError(t, h.Release())

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	h2, err := b.Acquire(ctx2)
	require.NoError(t, err)
	assert.NoError(t, h2.Release())
}

func TestLock_TotalOrder(t *testing.T) {
	l := New(t.TempDir())

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			h, err := l.Acquire(ctx)
			if !assert.NoError(t, err) {
				return
			}
			defer h.Release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "at most one holder at any instant")
}
