package host

import (
	"fmt"
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the logger type accepted throughout the module.
type Logger = logiface.Logger[logiface.Event]

// NewLogger returns a JSON logger writing to w.
func NewLogger(w io.Writer, level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// ParseLevel maps a level name ("err", "warning", "info", "debug", ...) to a
// logiface level. The empty string means informational.
func ParseLevel(s string) (logiface.Level, error) {
	if s == "" {
		return logiface.LevelInformational, nil
	}
	for l := logiface.LevelDisabled; l <= logiface.LevelTrace; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
}
