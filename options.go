package conline

import (
	"github.com/dshills/conline/internal/bus"
	"github.com/dshills/conline/internal/device"
	"github.com/dshills/conline/internal/engine"
	"github.com/dshills/conline/internal/logging"
)

// Option configures a session at Start.
type Option func(*options)

type options struct {
	device        device.Device
	prompt        string
	busCapacity   int
	echoCommitted bool
	logger        *logging.Logger
}

func defaultOptions() options {
	return options{
		prompt:      engine.DefaultPrompt,
		busCapacity: bus.DefaultCapacity,
		logger:      logging.Nop(),
	}
}

// WithDevice uses dev instead of a freshly initialized terminal screen.
// The session takes ownership and closes it on teardown.
func WithDevice(dev device.Device) Option {
	return func(o *options) { o.device = dev }
}

// WithPrompt sets the initial prompt. The empty string is a valid
// prompt, the same as SetPrompt accepts; the default applies only when
// the option is absent.
func WithPrompt(prompt string) Option {
	return func(o *options) { o.prompt = prompt }
}

// WithBusCapacity bounds the control bus. Non-positive values keep the
// default.
func WithBusCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.busCapacity = n
		}
	}
}

// WithCommittedEcho controls whether committing an input line also
// reprints prompt+line to permanent scrollback.
func WithCommittedEcho(on bool) Option {
	return func(o *options) { o.echoCommitted = on }
}

// WithLogger routes session logging to logger.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
