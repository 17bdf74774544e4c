package engine

import (
	"errors"
	"fmt"
)

// ErrFault matches any FaultError via errors.Is.
var ErrFault = errors.New("engine fault")

// FaultError wraps a panic recovered while processing a command.
type FaultError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack []byte
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	return fmt.Sprintf("engine fault: %v", e.Value)
}

// Is allows errors.Is to match FaultError with ErrFault.
func (e *FaultError) Is(target error) bool {
	return target == ErrFault
}
