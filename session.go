package conline

import (
	"context"
	"sync"

	"github.com/dshills/conline/internal/asyncmutex"
	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/command"
	"github.com/dshills/conline/internal/device"
	"github.com/dshills/conline/internal/engine"
	"github.com/dshills/conline/internal/input"
	"github.com/dshills/conline/internal/logging"
)

// Session is a running console session: the mutation engine and the
// input reader, plus the ordering mutexes callers go through. Create
// one with Start; all methods are safe for concurrent use.
type Session struct {
	bus   *bus.Bus
	lines *bus.LineQueue
	dev   device.Device
	log   *logging.Logger

	// writeMu grants exclusive use of the write path; readMu ensures at
	// most one ReadLine waits on the line queue at a time.
	writeMu *asyncmutex.Mutex
	readMu  *asyncmutex.Mutex

	// ctx is the global cancellation signal: one-shot, fired by Close,
	// by an unrecovered fault in either loop, or by the demo binary's
	// signal hook calling Close.
	ctx    context.Context
	cancel context.CancelCauseFunc

	closeOnce sync.Once
	downOnce  sync.Once
	wg        sync.WaitGroup
	done      chan struct{}
}

// Start creates the session plumbing and launches the mutation engine
// and the input reader as independent goroutines. Without WithDevice it
// takes over the real terminal.
func Start(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dev := o.device
	if dev == nil {
		screen, err := device.NewScreen()
		if err != nil {
			return nil, err
		}
		dev = screen
	}

	ctx, cancel := context.WithCancelCause(context.Background())

	s := &Session{
		bus:     bus.New(o.busCapacity),
		lines:   bus.NewLineQueue(),
		dev:     dev,
		log:     o.logger.WithComponent("session"),
		writeMu: asyncmutex.New(),
		readMu:  asyncmutex.New(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	eng := engine.New(engine.Config{
		Device:        dev,
		Bus:           s.bus,
		Lines:         s.lines,
		Prompt:        o.prompt,
		EchoCommitted: o.echoCommitted,
		Logger:        o.logger,
	})
	rdr := input.NewReader(dev, s.bus, o.logger)

	s.wg.Add(2)
	go s.runLoop("engine", eng.Run)
	go s.runLoop("input", rdr.Run)

	go func() {
		s.wg.Wait()
		close(s.done)
	}()

	return s, nil
}

// runLoop supervises one long-running loop. When the loop exits, for
// any reason, the session tears down: a dead engine or reader makes the
// session unusable. A fault escaping the loop itself is unrecoverable
// and becomes the cancellation cause.
func (s *Session) runLoop(name string, run func(context.Context) error) {
	defer s.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("%s loop panicked: %v", name, p)
			s.teardown(&engine.FaultError{Value: p})
			return
		}
	}()

	err := run(s.ctx)
	if err != nil && context.Cause(s.ctx) == nil {
		s.log.Error("%s loop failed: %v", name, err)
	}
	s.teardown(err)
}

// teardown fires the global cancellation signal and releases the
// device. The first cause wins; later calls are no-ops.
//
// The bus closes before the cancellation fires: Close may have to wait
// out a sender blocked on a full bus, and that sender only unblocks
// while the engine is still draining.
func (s *Session) teardown(cause error) {
	s.downOnce.Do(func() {
		if cause == nil {
			cause = ErrClosed
		}
		s.bus.Close()
		s.cancel(cause)
		_ = s.dev.Close()
	})
}

// WriteLine prints text as one scrollback line, suspending until the
// engine has drawn it. Concurrent writers are serialized by the write
// mutex, so multi-line bursts from one caller stay contiguous only via
// Lock or Stage; single lines never tear.
func (s *Session) WriteLine(ctx context.Context, text string) error {
	g, err := s.writeMu.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Unlock()

	return s.bus.SendWait(ctx, command.Print(text))
}

// ReadLine suspends until the user commits an input line. The wait is
// cancelled by ctx or by the session's global cancellation, whichever
// fires first. At most one ReadLine waits on the queue at a time.
func (s *Session) ReadLine(ctx context.Context) (string, error) {
	lctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(s.ctx, func() {
		cancel(context.Cause(s.ctx))
	})
	defer stop()

	g, err := s.readMu.Lock(lctx)
	if err != nil {
		return "", readErr(lctx, err)
	}
	defer g.Unlock()

	line, err := s.lines.Receive(lctx)
	if err != nil {
		return "", readErr(lctx, err)
	}
	return line, nil
}

// readErr surfaces the session's cancellation cause instead of a bare
// context error when the global signal ended the wait.
func readErr(ctx context.Context, err error) error {
	if cause := context.Cause(ctx); cause != nil && cause != ctx.Err() {
		return cause
	}
	return err
}

// SetPrompt replaces the prompt, suspending until the input row has
// been redrawn.
func (s *Session) SetPrompt(ctx context.Context, text string) error {
	g, err := s.writeMu.Lock(ctx)
	if err != nil {
		return err
	}
	defer g.Unlock()

	return s.bus.SendWait(ctx, command.Prompt(text))
}

// Close stops the session: the bus rejects new sends immediately,
// already-queued commands still drain, and once the engine exits the
// global cancellation fires and the device is released. Close is
// idempotent and does not wait for the drain; use Wait for that.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.bus.Close()
	})
	return nil
}

// Wait blocks until both loops have exited.
func (s *Session) Wait() {
	<-s.done
}

// Done is closed when the session has fully stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
