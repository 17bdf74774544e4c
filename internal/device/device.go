// Package device abstracts the physical terminal consumed by the
// mutation engine and the input reader.
//
// A Device models a line-oriented console: committed scrollback rows
// above a single visible input row with a movable cursor column. All
// mutation goes through the engine, so implementations only need to be
// safe against their own internal event sources (resize callbacks, key
// polling).
package device

import (
	"errors"

	"github.com/dshills/conline/internal/input/key"
)

// ErrDeviceClosed is returned by ReadKey once the device has been
// closed and no further keys will arrive.
var ErrDeviceClosed = errors.New("terminal device is closed")

// Device is the terminal capability contract.
type Device interface {
	// Write draws s on the input row starting at the cursor column,
	// advancing the column. A '\n' commits the row's current content to
	// scrollback and resets the column to 0.
	Write(s string)

	// Column returns the cursor column on the input row.
	Column() int

	// SetColumn moves the cursor to the given column on the input row.
	SetColumn(col int)

	// Width returns the visible width of the input row in columns.
	Width() int

	// ClearLine erases the input row and resets the column to 0.
	ClearLine()

	// ReadKey blocks until a key arrives. It returns ErrDeviceClosed
	// once the device is closed; the blocking wait itself is not
	// interruptible by anything else.
	ReadKey() (key.Event, error)

	// Close releases the device. It unblocks a pending ReadKey and is
	// idempotent.
	Close() error
}
