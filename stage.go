package conline

import (
	"context"
	"sync"

	"github.com/dshills/conline/internal/command"
)

// Stage accumulates lines locally and flushes them as one atomic,
// order-preserving block. Buffering never touches the write mutex or
// the bus, so a stage can be held open cheaply for as long as the
// caller likes; only the flush contends with other writers.
type Stage struct {
	s       *Session
	mu      sync.Mutex
	lines   []string
	flushed bool
}

// Stage creates an empty stage. It never suspends; buffering begins
// immediately.
func (s *Session) Stage() *Stage {
	return &Stage{s: s}
}

// WriteLine appends text to the stage. Concurrent callers into the
// same stage are serialized and never interleave their appends.
func (st *Stage) WriteLine(text string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.flushed {
		return ErrStageFlushed
	}
	st.lines = append(st.lines, text)
	return nil
}

// Len reports the number of buffered lines.
func (st *Stage) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.lines)
}

// Flush closes the stage to further writes, then acquires the write
// mutex once and delivers every buffered line in original order,
// waiting for each draw before sending the next. A second Flush is a
// no-op. Call it on scope exit, typically with defer.
func (st *Stage) Flush(ctx context.Context) error {
	st.mu.Lock()
	if st.flushed {
		st.mu.Unlock()
		return nil
	}
	st.flushed = true
	lines := st.lines
	st.lines = nil
	st.mu.Unlock()

	if len(lines) == 0 {
		return nil
	}

	g, err := st.s.writeMu.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Unlock()

	for _, line := range lines {
		if err := st.s.bus.SendWait(ctx, command.Print(line)); err != nil {
			return err
		}
	}
	return nil
}
