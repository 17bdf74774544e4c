package conline

import (
	"errors"

	"github.com/dshills/conline/internal/asyncmutex"
	"github.com/dshills/conline/internal/bus"
)

// Sentinel errors for the public API.
var (
	// ErrClosed is returned when an operation runs against a closed
	// session. It is also the cancellation cause of the session's
	// global context after Close.
	ErrClosed = bus.ErrClosed

	// ErrTimeout is returned by bounded-wait lock acquisition.
	ErrTimeout = asyncmutex.ErrTimeout

	// ErrLockReleased is returned by WriteLine on a released Lock.
	ErrLockReleased = errors.New("lock handle released")

	// ErrStageFlushed is returned by WriteLine on a flushed Stage.
	ErrStageFlushed = errors.New("stage already flushed")
)
