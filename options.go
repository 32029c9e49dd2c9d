package eventqueue

import "github.com/joeycumines/logiface"

// Option configures an Events container.
type Option func(*options)

type options struct {
	logger *logiface.Logger[logiface.Event]
	name   string
}

// WithLogger sets the logger used for lifecycle and growth messages.
// A nil logger (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName sets the name reported in logs and errors, defaulting to the
// event type.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
