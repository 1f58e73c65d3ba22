package logger

import (
	"strconv"
	"strings"
	"sync"
)

// Level is one of the three verbosity settings the controller understands.
type Level string

// Log levels used across the application.
const (
	TraceLevel Level = "trace"
	DebugLevel Level = "debug"
	ErrorLevel Level = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// ParseLevel maps a level name to a Level. The legacy numeric form is still
// accepted: "1" is trace, "2" is debug. Anything else falls back to error.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch Level(s) {
	case TraceLevel, DebugLevel, ErrorLevel:
		return Level(s)
	}
	if n, err := strconv.Atoi(s); err == nil {
		switch n {
		case 1:
			return TraceLevel
		case 2:
			return DebugLevel
		}
	}
	return ErrorLevel
}

// Valid reports whether l is one of the named levels.
func (l Level) Valid() bool {
	switch l {
	case TraceLevel, DebugLevel, ErrorLevel:
		return true
	}
	return false
}

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level Level) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, nil)
	})
	return globalLogger
}
