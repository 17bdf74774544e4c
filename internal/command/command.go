// Package command defines the mutation commands carried by the control
// bus, each paired with a one-shot completion signal.
//
// A Command is owned by the bus from send until the engine resolves its
// signal; the signal itself is shared between sender and engine.
package command

import (
	"context"
	"fmt"
	"sync"
)

// Kind identifies the command variant.
type Kind uint8

const (
	// KindPrint writes a line of permanent scrollback.
	KindPrint Kind = iota
	// KindEcho inserts a typed character into the input buffer.
	KindEcho
	// KindMove moves the input cursor one column.
	KindMove
	// KindDelete removes a character before or after the cursor.
	KindDelete
	// KindCommit finalizes the input buffer into a committed line.
	KindCommit
	// KindPrompt replaces the prompt text.
	KindPrompt
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPrint:
		return "Print"
	case KindEcho:
		return "Echo"
	case KindMove:
		return "Move"
	case KindDelete:
		return "Delete"
	case KindCommit:
		return "Commit"
	case KindPrompt:
		return "Prompt"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Direction is the cursor movement direction for KindMove.
type Direction uint8

const (
	// Left moves the cursor one position toward the start.
	Left Direction = iota
	// Right moves the cursor one position toward the end.
	Right
)

// Location selects which neighbor of the cursor KindDelete removes.
type Location uint8

const (
	// Before removes the character preceding the cursor (backspace).
	Before Location = iota
	// After removes the character under the cursor (forward delete).
	After
)

// Command is a single mutation request. Construct one with the
// kind-specific constructors; the zero value has no completion signal
// and must not be sent.
type Command struct {
	Kind Kind

	// Text carries the payload for KindPrint and KindPrompt.
	Text string

	// Rune carries the character for KindEcho.
	Rune rune

	// Dir carries the direction for KindMove.
	Dir Direction

	// Loc carries the delete location for KindDelete.
	Loc Location

	done chan error
	once sync.Once
}

func newCommand(kind Kind) *Command {
	return &Command{Kind: kind, done: make(chan error, 1)}
}

// Print creates a command that writes text as a scrollback line.
func Print(text string) *Command {
	c := newCommand(KindPrint)
	c.Text = text
	return c
}

// Echo creates a command that inserts r at the cursor.
func Echo(r rune) *Command {
	c := newCommand(KindEcho)
	c.Rune = r
	return c
}

// Move creates a command that moves the cursor in dir.
func Move(dir Direction) *Command {
	c := newCommand(KindMove)
	c.Dir = dir
	return c
}

// Delete creates a command that removes the character at loc.
func Delete(loc Location) *Command {
	c := newCommand(KindDelete)
	c.Loc = loc
	return c
}

// Commit creates a command that finalizes the current input line.
func Commit() *Command {
	return newCommand(KindCommit)
}

// Prompt creates a command that replaces the prompt with text.
func Prompt(text string) *Command {
	c := newCommand(KindPrompt)
	c.Text = text
	return c
}

// Resolve completes the command with err (nil for success). Only the
// first call has any effect; the completion signal fires exactly once.
func (c *Command) Resolve(err error) {
	c.once.Do(func() {
		c.done <- err
		close(c.done)
	})
}

// Wait suspends until the command completes or ctx is cancelled. If
// cancellation wins, the command may still be processed later; the
// caller only learns that it stopped waiting.
func (c *Command) Wait(ctx context.Context) error {
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done exposes the completion channel for select-based waiters. It
// yields the command's error once and is closed afterwards.
func (c *Command) Done() <-chan error {
	return c.done
}
