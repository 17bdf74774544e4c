// Package input translates raw key events from the terminal device into
// control-bus commands.
package input

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/command"
	"github.com/dshills/conline/internal/device"
	"github.com/dshills/conline/internal/input/key"
	"github.com/dshills/conline/internal/logging"
)

// Reader runs the input loop on its own goroutine: the device's key
// read blocks and cannot be interrupted mid-wait, so cancellation is
// only observed once a read returns (best effort).
type Reader struct {
	dev device.Device
	bus *bus.Bus
	log *logging.Logger
}

// NewReader creates a reader. logger may be nil.
func NewReader(dev device.Device, b *bus.Bus, logger *logging.Logger) *Reader {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reader{dev: dev, bus: b, log: logger.WithComponent("input")}
}

// Run reads keys until the device closes or ctx fires. Each mapped key
// is sent fire-and-forget: the reader never waits for command
// completion, so typing cannot stall behind slow writers.
func (r *Reader) Run(ctx context.Context) error {
	for {
		ev, err := r.dev.ReadKey()
		if err != nil {
			if errors.Is(err, device.ErrDeviceClosed) {
				return nil
			}
			return fmt.Errorf("read key: %w", err)
		}

		// Cancellation is checked after each blocking read returns.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cmd, ok := Translate(ev)
		if !ok {
			continue
		}

		if err := r.bus.Send(ctx, cmd); err != nil {
			if errors.Is(err, bus.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("send %s: %w", cmd.Kind, err)
		}
	}
}

// Translate maps a key event onto its bus command. Unmapped keys
// report ok=false and are ignored by the reader.
func Translate(ev key.Event) (*command.Command, bool) {
	switch ev.Key {
	case key.KeyLeft:
		return command.Move(command.Left), true
	case key.KeyRight:
		return command.Move(command.Right), true
	case key.KeyDelete:
		return command.Delete(command.After), true
	case key.KeyBackspace:
		return command.Delete(command.Before), true
	case key.KeyEnter:
		return command.Commit(), true
	case key.KeyRune:
		if !ev.IsPrintable() {
			return nil, false
		}
		return command.Echo(ev.Rune), true
	default:
		return nil, false
	}
}
