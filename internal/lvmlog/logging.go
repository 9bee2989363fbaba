// Package lvmlog wraps github.com/go-logr/logr with the verbosity
// convention used across the parser: Info for the outcome of opening a PV,
// Debug for phase transitions, Trace for per-field decode detail.
package lvmlog

import (
	"github.com/go-logr/logr"
)

const (
	LevelDebug = 1
	LevelTrace = 2
)

// Logger wraps a logr.Logger so callers never import logr directly.
type Logger struct {
	log logr.Logger
}

// New wraps an existing logr.Logger. A zero-value logr.Logger is treated the
// same as logr.Discard().
func New(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// Default returns a Logger that discards everything, matching the library's
// silent-unless-asked default.
func Default() *Logger {
	return &Logger{log: logr.Discard()}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.log.V(LevelDebug).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.log.V(LevelTrace).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	if l == nil {
		return
	}
	l.log.Error(err, msg, keysAndValues...)
}
