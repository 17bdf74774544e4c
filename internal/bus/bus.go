// Package bus provides the bounded control bus that serializes mutation
// commands into the engine, and the unbounded queue that delivers
// committed input lines to readers.
//
// The bus has many producers and exactly one consumer. Its FIFO order is
// the system's total order over all terminal mutations.
package bus

import (
	"context"
	"sync"

	"github.com/dshills/conline/internal/command"
)

// DefaultCapacity is the bus capacity used when none is configured.
const DefaultCapacity = 10

// Bus is a bounded, ordered, multi-producer single-consumer command
// channel. Create one with New.
type Bus struct {
	ch        chan *command.Command
	closed    chan struct{}
	closeOnce sync.Once

	// mu linearizes sends against Close: an enqueue happens entirely
	// before or entirely after the bus goes down, never astride it.
	mu   sync.RWMutex
	down bool
}

// New creates a bus with the given capacity. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		ch:     make(chan *command.Command, capacity),
		closed: make(chan struct{}),
	}
}

// Cap returns the bus capacity.
func (b *Bus) Cap() int {
	return cap(b.ch)
}

// Send enqueues cmd in FIFO order, suspending while the bus is full.
// It fails with the context error if ctx is cancelled first, and with
// ErrClosed once the bus no longer accepts sends.
func (b *Bus) Send(ctx context.Context, cmd *command.Command) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.down {
		return ErrClosed
	}

	// The read lock is held across the enqueue, so Close cannot land
	// between the check and the send and strand an accepted command
	// past the consumer's final drain. A full bus still makes
	// progress: the consumer drains without touching the lock.
	select {
	case b.ch <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendWait sends cmd and suspends until its completion signal resolves,
// racing completion against ctx. If cancellation wins after the bus
// accepted the command, the command may still be processed later even
// though SendWait reports the cancellation.
func (b *Bus) SendWait(ctx context.Context, cmd *command.Command) error {
	if err := b.Send(ctx, cmd); err != nil {
		return err
	}
	return cmd.Wait(ctx)
}

// Receive exposes the consumer side of the bus. Exactly one goroutine
// may drain it.
func (b *Bus) Receive() <-chan *command.Command {
	return b.ch
}

// Closed is signalled when the bus stops accepting new sends. Commands
// already queued are still delivered through Receive.
func (b *Bus) Closed() <-chan struct{} {
	return b.closed
}

// Close marks the bus closed to new sends. It is idempotent and does
// not wait for queued commands to drain.
//
// The write lock waits out in-flight sends before the closed signal
// fires, so every accepted command is already buffered when the
// consumer begins its final drain.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.down = true
		b.mu.Unlock()
		close(b.closed)
	})
}
