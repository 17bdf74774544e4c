package bus

import (
	"context"
	"sync"
)

// LineQueue is an unbounded FIFO of committed input lines. Push never
// blocks, so the engine can finish a commit without a reader present;
// Receive suspends until a line arrives or the context is cancelled.
type LineQueue struct {
	mu    sync.Mutex
	lines []string
	ready chan struct{}
}

// NewLineQueue creates an empty queue.
func NewLineQueue() *LineQueue {
	return &LineQueue{ready: make(chan struct{}, 1)}
}

// Push appends line to the queue and wakes one waiting receiver.
func (q *LineQueue) Push(line string) {
	q.mu.Lock()
	q.lines = append(q.lines, line)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Receive removes and returns the oldest line, suspending while the
// queue is empty. It fails with the context error on cancellation.
func (q *LineQueue) Receive(ctx context.Context) (string, error) {
	for {
		q.mu.Lock()
		if len(q.lines) > 0 {
			line := q.lines[0]
			q.lines = q.lines[1:]
			remaining := len(q.lines)
			q.mu.Unlock()
			if remaining > 0 {
				// Re-arm the wakeup for the next receiver.
				select {
				case q.ready <- struct{}{}:
				default:
				}
			}
			return line, nil
		}
		q.mu.Unlock()

		select {
		case <-q.ready:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// Len reports the number of undelivered lines.
func (q *LineQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.lines)
}
