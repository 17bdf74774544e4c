// Package asyncmutex provides a cancellable mutual-exclusion primitive
// with scoped, idempotent release.
//
// Unlike sync.Mutex, acquisition suspends cooperatively and honors
// context cancellation: a caller cancelled while waiting fails with the
// context error and never receives the guard.
package asyncmutex

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned by LockTimeout when the deadline elapses before
// the mutex is acquired.
var ErrTimeout = errors.New("mutex acquisition timed out")

// Mutex is a binary mutual-exclusion lock with at most one holder.
// The zero value is not usable; call New.
type Mutex struct {
	sem *semaphore.Weighted
}

// New creates an unlocked mutex.
func New() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock acquires the mutex, suspending while another holder exists.
// If ctx is cancelled first, Lock returns the context error and the
// guard is never granted.
func (m *Mutex) Lock(ctx context.Context) (*Guard, error) {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Guard{m: m}, nil
}

// LockTimeout acquires the mutex, failing with ErrTimeout if d elapses
// first. Cancellation of ctx still fails with the context error.
func (m *Mutex) LockTimeout(ctx context.Context, d time.Duration) (*Guard, error) {
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	if err := m.sem.Acquire(tctx, 1); err != nil {
		// Distinguish the deadline we imposed from the caller's own
		// cancellation.
		if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrTimeout
		}
		return nil, err
	}
	return &Guard{m: m}, nil
}

// TryLock acquires the mutex without suspending. It reports whether the
// guard was granted.
func (m *Mutex) TryLock() (*Guard, bool) {
	if !m.sem.TryAcquire(1) {
		return nil, false
	}
	return &Guard{m: m}, true
}

// Guard represents a held mutex. Release it with Unlock; a Guard must
// not be copied.
type Guard struct {
	m    *Mutex
	once sync.Once
}

// Unlock releases the mutex. It is idempotent: calling Unlock more than
// once, from any exit path, releases exactly once.
func (g *Guard) Unlock() {
	g.once.Do(func() {
		g.m.sem.Release(1)
	})
}
