package bus

import "errors"

// Sentinel errors for the control bus.
var (
	// ErrClosed is returned when a send is attempted after Close.
	ErrClosed = errors.New("control bus is closed")
)
