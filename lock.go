package conline

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/conline/internal/asyncmutex"
	"github.com/dshills/conline/internal/command"
)

// Lock holds the session's write mutex for its whole lifetime. While
// held, no other write-path caller can interleave: every line written
// through the handle lands contiguously, in issue order.
type Lock struct {
	s      *Session
	guard  *asyncmutex.Guard
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// Lock acquires the write mutex eagerly and returns the handle once it
// is held. Release the handle on every exit path, typically with defer.
func (s *Session) Lock(ctx context.Context) (*Lock, error) {
	g, err := s.writeMu.Lock(ctx)
	if err != nil {
		return nil, err
	}
	lctx, cancel := context.WithCancel(s.ctx)
	return &Lock{s: s, guard: g, ctx: lctx, cancel: cancel}, nil
}

// LockTimeout is Lock with a bounded wait; it fails with ErrTimeout
// when d elapses before the mutex is acquired.
func (s *Session) LockTimeout(ctx context.Context, d time.Duration) (*Lock, error) {
	g, err := s.writeMu.LockTimeout(ctx, d)
	if err != nil {
		return nil, err
	}
	lctx, cancel := context.WithCancel(s.ctx)
	return &Lock{s: s, guard: g, ctx: lctx, cancel: cancel}, nil
}

// WriteLine prints text while the lock is held. It sends directly to
// the bus without touching the write mutex again.
func (l *Lock) WriteLine(ctx context.Context, text string) error {
	if l.ctx.Err() != nil {
		// Distinguish a released handle from a torn-down session.
		if cause := context.Cause(l.s.ctx); cause != nil {
			return cause
		}
		return ErrLockReleased
	}
	return l.s.bus.SendWait(ctx, command.Print(text))
}

// Release cancels the handle's private scope and returns the write
// mutex. Safe to call more than once.
func (l *Lock) Release() {
	l.once.Do(func() {
		l.cancel()
		l.guard.Unlock()
	})
}
