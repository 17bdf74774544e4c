// Package engine implements the mutation engine: the single consumer of
// the control bus and the sole owner of prompt, input buffer, cursor,
// and all terminal device writes.
//
// Exactly one goroutine runs Run at a time; session state needs no
// locking beyond the bus's FIFO ordering.
package engine

import (
	"context"
	"runtime/debug"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/command"
	"github.com/dshills/conline/internal/device"
	"github.com/dshills/conline/internal/logging"
)

// DefaultPrompt is used when no prompt is configured.
const DefaultPrompt = "> "

// cursorAppend is the sentinel cursor meaning "append position". It is
// logically the buffer length but survives appends without adjustment.
const cursorAppend = -1

// Config configures an Engine.
type Config struct {
	// Device receives all terminal mutation.
	Device device.Device

	// Bus is the command source. The engine is its only consumer.
	Bus *bus.Bus

	// Lines receives committed input lines.
	Lines *bus.LineQueue

	// Prompt is the initial prompt. Defaults to DefaultPrompt.
	Prompt string

	// EchoCommitted reprints prompt+line to scrollback on commit.
	EchoCommitted bool

	// Logger receives fault reports. Defaults to a nop logger.
	Logger *logging.Logger
}

// Engine owns the session state and interprets commands one at a time,
// strictly in bus order.
type Engine struct {
	dev   device.Device
	bus   *bus.Bus
	lines *bus.LineQueue
	log   *logging.Logger

	prompt        string
	buf           []rune
	cursor        int
	echoCommitted bool
}

// New creates an engine. Run must be called exactly once.
func New(cfg Config) *Engine {
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Engine{
		dev:           cfg.Device,
		bus:           cfg.Bus,
		lines:         cfg.Lines,
		log:           cfg.Logger.WithComponent("engine"),
		prompt:        cfg.Prompt,
		cursor:        cursorAppend,
		echoCommitted: cfg.EchoCommitted,
	}
}

// Run drains the bus until it closes (drain remaining, return nil) or
// ctx fires (fail-resolve remaining, return the context error). Every
// received command is resolved exactly once, even on panic.
func (e *Engine) Run(ctx context.Context) error {
	e.redrawInput()

	for {
		select {
		case cmd := <-e.bus.Receive():
			e.handle(cmd)
		case <-ctx.Done():
			e.failPending(ctx.Err())
			return ctx.Err()
		case <-e.bus.Closed():
			e.drain(ctx)
			return nil
		}
	}
}

// drain processes commands still buffered at close time.
func (e *Engine) drain(ctx context.Context) {
	for {
		select {
		case cmd := <-e.bus.Receive():
			e.handle(cmd)
		case <-ctx.Done():
			e.failPending(ctx.Err())
			return
		default:
			return
		}
	}
}

// failPending resolves still-queued commands with err so no sender
// waits forever.
func (e *Engine) failPending(err error) {
	for {
		select {
		case cmd := <-e.bus.Receive():
			cmd.Resolve(err)
		default:
			return
		}
	}
}

// handle processes one command to completion and resolves its signal in
// a guaranteed cleanup step. A panic is converted into a FaultError
// resolution; the loop survives.
func (e *Engine) handle(cmd *command.Command) {
	var err error
	defer func() {
		if p := recover(); p != nil {
			fault := &FaultError{Value: p, Stack: debug.Stack()}
			e.log.Error("command %s panicked: %v", cmd.Kind, p)
			err = fault
		}
		cmd.Resolve(err)
	}()

	switch cmd.Kind {
	case command.KindPrint:
		e.print(cmd.Text)
	case command.KindEcho:
		e.echo(cmd.Rune)
	case command.KindMove:
		e.move(cmd.Dir)
	case command.KindDelete:
		e.delete(cmd.Loc)
	case command.KindCommit:
		e.commit()
	case command.KindPrompt:
		e.changePrompt(cmd.Text)
	}
}

// cursorIndex resolves the sentinel to a concrete buffer index.
func (e *Engine) cursorIndex() int {
	if e.cursor == cursorAppend {
		return len(e.buf)
	}
	return e.cursor
}

// cursorColumn is the device column of the drawn cursor.
func (e *Engine) cursorColumn() int {
	col := runewidth.StringWidth(e.prompt)
	for _, r := range e.buf[:e.cursorIndex()] {
		col += runewidth.RuneWidth(r)
	}
	return col
}

// lineWidth is the total width of prompt plus buffer.
func (e *Engine) lineWidth() int {
	col := runewidth.StringWidth(e.prompt)
	for _, r := range e.buf {
		col += runewidth.RuneWidth(r)
	}
	return col
}

// redrawInput repaints the input row as prompt+buffer and restores the
// drawn cursor.
func (e *Engine) redrawInput() {
	e.dev.ClearLine()
	e.dev.Write(e.prompt + string(e.buf))
	e.dev.SetColumn(e.cursorColumn())
}

// print erases the input row, writes text to permanent scrollback, and
// redraws the input row. Buffer and cursor are untouched.
func (e *Engine) print(text string) {
	e.dev.ClearLine()
	e.dev.Write(text + "\n")
	e.redrawInput()
}

// move shifts the cursor one position. Out-of-range moves are no-ops.
// A cursor at or past the end returns to the append sentinel.
func (e *Engine) move(dir command.Direction) {
	cur := e.cursorIndex()
	switch dir {
	case command.Left:
		if cur > 0 {
			cur--
		}
	case command.Right:
		if cur < len(e.buf) {
			cur++
		}
	}
	if cur >= len(e.buf) {
		e.cursor = cursorAppend
	} else {
		e.cursor = cur
	}
	e.dev.SetColumn(e.cursorColumn())
}

// delete removes the character before or after the cursor, if any.
func (e *Engine) delete(loc command.Location) {
	if len(e.buf) == 0 {
		return
	}

	switch loc {
	case command.After:
		cur := e.cursorIndex()
		if cur >= len(e.buf) {
			return // nothing under an append-position cursor
		}
		e.buf = append(e.buf[:cur], e.buf[cur+1:]...)
		// cursor unchanged: it now addresses the following character
	case command.Before:
		switch {
		case e.cursor == cursorAppend:
			e.buf = e.buf[:len(e.buf)-1]
		case e.cursor == 0:
			return // cannot delete before start
		default:
			e.buf = append(e.buf[:e.cursor-1], e.buf[e.cursor:]...)
			e.cursor--
			if e.cursor >= len(e.buf) {
				e.cursor = cursorAppend
			}
		}
	}
	e.redrawInput()
}

// echo inserts a typed character at the cursor. Control characters are
// rejected (they must never reach this path), and characters that would
// reach the last device column are dropped rather than wrapped.
func (e *Engine) echo(r rune) {
	if unicode.IsControl(r) {
		return
	}

	w := runewidth.RuneWidth(r)
	if w == 0 || e.lineWidth()+w > e.dev.Width()-1 {
		return
	}

	if e.cursor == cursorAppend {
		e.buf = append(e.buf, r)
		e.dev.Write(string(r))
		return
	}

	e.buf = append(e.buf[:e.cursor], append([]rune{r}, e.buf[e.cursor:]...)...)
	e.cursor++
	e.redrawInput()
}

// commit finalizes the input buffer: snapshot, reset, deliver to the
// committed-line queue, redraw an empty prompt row. The optional
// committed-line echo is a direct device write, never a bus send, so
// the engine cannot deadlock against its own bounded bus.
func (e *Engine) commit() {
	e.dev.ClearLine()

	snapshot := string(e.buf)
	e.buf = e.buf[:0]
	e.cursor = cursorAppend

	e.lines.Push(snapshot)

	if e.echoCommitted {
		e.dev.Write(e.prompt + snapshot + "\n")
	}
	e.redrawInput()
}

// changePrompt swaps the prompt and redraws with buffer and cursor
// unchanged.
func (e *Engine) changePrompt(text string) {
	e.prompt = text
	e.redrawInput()
}

// Prompt returns the current prompt. Only safe to call when the engine
// is not running (tests, post-shutdown inspection).
func (e *Engine) Prompt() string {
	return e.prompt
}
