package lvmlog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
)

var (
	debugColor = color.New(color.FgCyan).SprintFunc()
	traceColor = color.New(color.FgYellow).SprintFunc()
	errorColor = color.New(color.FgRed).SprintFunc()
)

// simpleSink is a minimal logr.LogSink writing human-readable, optionally
// colorized lines to a writer, gated by a minimum verbosity level.
type simpleSink struct {
	writer       io.Writer
	minVerbosity int
	useColor     bool
	mu           sync.Mutex
}

func (s *simpleSink) Init(logr.RuntimeInfo) {}

func (s *simpleSink) Enabled(level int) bool { return level <= s.minVerbosity }

func (s *simpleSink) Info(level int, msg string, keysAndValues ...interface{}) {
	if !s.Enabled(level) {
		return
	}
	s.log(false, level, msg, keysAndValues...)
}

func (s *simpleSink) Error(err error, msg string, keysAndValues ...interface{}) {
	s.log(true, 0, msg, append(keysAndValues, "error", err)...)
}

func (s *simpleSink) WithValues(keysAndValues ...interface{}) logr.LogSink { return s }
func (s *simpleSink) WithName(name string) logr.LogSink                   { return s }

func (s *simpleSink) log(isError bool, level int, msg string, keysAndValues ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := fmt.Sprintf("[LEVEL %d]", level)
	switch {
	case isError:
		label = "[ERROR]"
	case level == LevelDebug:
		label = "[DEBUG]"
	case level == LevelTrace:
		label = "[TRACE]"
	case level == 0:
		label = "[INFO]"
	}
	if s.useColor {
		switch label {
		case "[ERROR]":
			label = errorColor(label)
		case "[DEBUG]":
			label = debugColor(label)
		case "[TRACE]":
			label = traceColor(label)
		}
	}

	fmt.Fprintf(s.writer, "%s %s\n", label, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(s.writer, "  %v: %v\n", keysAndValues[i], keysAndValues[i+1])
	}
}

// NewSimpleLogger returns a logr.Logger that writes to os.Stderr at the
// given minimum verbosity (0=info, LevelDebug, LevelTrace), for CLI front
// ends that want readable output without pulling in a structured logging
// backend.
func NewSimpleLogger(minVerbosity int, useColor bool) logr.Logger {
	sink := &simpleSink{writer: os.Stderr, minVerbosity: minVerbosity, useColor: useColor}
	return logr.New(sink)
}
