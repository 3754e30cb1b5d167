// Package dblock provides the structural lock: mutual exclusion for
// create/delete of course databases across worker processes. The
// cross-process half is an advisory flock on a well-known file, which the
// kernel releases when its holder exits, so a crashed holder never wedges
// the other workers. flock alone cannot reliably serialize goroutines
// within one process, so acquisitions also pass through an in-process
// semaphore.
// See docs/ARCHITECTURE.md § Structural Lock.
package dblock

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/openedu-labs/coursedb/pkg/types"
)

// FileName is the lock file name inside the data directory. The file exists
// at a well-known location while a structural operation is in progress.
const FileName = "structural.lock"

// retryDelay is the poll interval while waiting for a held flock.
const retryDelay = 50 * time.Millisecond

// Lock hands out scoped acquisitions of the structural lock.
type Lock struct {
	path string
	sem  chan struct{}
}

// New returns a Lock over the structural lock file in dataDir.
func New(dataDir string) *Lock {
	return &Lock{
		path: filepath.Join(dataDir, FileName),
		sem:  make(chan struct{}, 1),
	}
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Acquire blocks until the lock is free or ctx is done. A deadline or
// cancellation surfaces as types.ErrLockTimeout with no state changed.
// The returned handle must be released on every exit path; defer
// handle.Release() immediately after a successful Acquire.
func (l *Lock) Acquire(ctx context.Context) (*Handle, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", types.ErrLockTimeout, l.path)
	}

	fl := flock.New(l.path)
	locked, err := fl.TryLockContext(ctx, retryDelay)
	if err != nil || !locked {
		<-l.sem
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("acquire structural lock: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", types.ErrLockTimeout, l.path)
	}

	log.Debug().Str("path", l.path).Msg("structural lock acquired")
	return &Handle{lock: l, fl: fl}, nil
}

// Handle is a held structural lock. Release is idempotent and safe to call
// on all exit paths, including after a failed operation.
type Handle struct {
	once sync.Once
	lock *Lock
	fl   *flock.Flock
}

// Release drops the lock. Calling Release more than once is a no-op.
func (h *Handle) Release() error {
	var err error
	h.once.Do(func() {
		err = h.fl.Unlock()
		<-h.lock.sem
		if err != nil {
			log.Error().Err(err).Str("path", h.fl.Path()).
				Msg("structural lock release failed")
			return
		}
		log.Debug().Str("path", h.fl.Path()).Msg("structural lock released")
	})
	return err
}
