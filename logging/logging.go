package logging

import "time"

// Level orders log records from chattiest to most severe.
type Level int32

const (
	LevelTrace Level = iota
	LevelVerbose
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

// String reports the canonical upper-case label for the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelVerbose:
		return "VERBOSE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Record is a single formatted log entry with call-site metadata.
type Record struct {
	Level    Level
	Time     time.Time
	File     string // basename of the emitting source file
	Line     int
	Function string
	Message  string
}

// Clock abstracts wall-clock reads so tests can pin record timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock for ClockFunc.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now implements Clock for SystemClock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sink receives finished records. Implementations must tolerate calls
// from multiple goroutines.
type Sink interface {
	Write(Record) error
}
