package logging

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

// Logger filters printf-style calls against a minimum level and hands
// surviving records to its sink. Safe from any goroutine.
type Logger struct {
	mu    sync.Mutex
	min   atomic.Int32
	clock Clock
	sink  Sink
}

// New constructs a logger writing to sink with the given threshold.
func New(sink Sink, min Level) *Logger {
	l := &Logger{clock: SystemClock{}, sink: sink}
	l.min.Store(int32(min))
	return l
}

// WithClock substitutes the wall clock used to stamp records.
func (l *Logger) WithClock(clock Clock) *Logger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

// SetMinimum adjusts the threshold; records below it are discarded.
func (l *Logger) SetMinimum(min Level) {
	if l == nil {
		return
	}
	l.min.Store(int32(min))
}

// Minimum reports the current threshold.
func (l *Logger) Minimum() Level {
	if l == nil {
		return LevelInfo
	}
	return Level(l.min.Load())
}

func (l *Logger) Tracef(format string, args ...any)    { l.output(2, LevelTrace, format, args...) }
func (l *Logger) Verbosef(format string, args ...any)  { l.output(2, LevelVerbose, format, args...) }
func (l *Logger) Debugf(format string, args ...any)    { l.output(2, LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)     { l.output(2, LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)     { l.output(2, LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any)    { l.output(2, LevelError, format, args...) }
func (l *Logger) Criticalf(format string, args ...any) { l.output(2, LevelCritical, format, args...) }

// Printf logs at Info so the logger satisfies printf-shaped interfaces.
func (l *Logger) Printf(format string, args ...any) {
	l.output(2, LevelInfo, format, args...)
}

func (l *Logger) output(skip int, level Level, format string, args ...any) {
	if l == nil || l.sink == nil {
		return
	}
	if level < Level(l.min.Load()) {
		return
	}

	rec := Record{
		Level:   level,
		Time:    l.clock.Now(),
		Message: fmt.Sprintf(format, args...),
	}
	if pc, file, line, ok := runtime.Caller(skip); ok {
		rec.File = filepath.Base(file)
		rec.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			rec.Function = fn.Name()
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sink.Write(rec)
}

var defaultLogger atomic.Pointer[Logger]

// Default returns the process-wide logger, constructing a stderr-backed
// one on first use.
func Default() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := New(NewStderrSink(), LevelInfo)
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger.Store(l)
	}
}

// Package-level helpers targeting the default logger.

func Tracef(format string, args ...any)    { Default().output(2, LevelTrace, format, args...) }
func Verbosef(format string, args ...any)  { Default().output(2, LevelVerbose, format, args...) }
func Debugf(format string, args ...any)    { Default().output(2, LevelDebug, format, args...) }
func Infof(format string, args ...any)     { Default().output(2, LevelInfo, format, args...) }
func Warnf(format string, args ...any)     { Default().output(2, LevelWarn, format, args...) }
func Errorf(format string, args ...any)    { Default().output(2, LevelError, format, args...) }
func Criticalf(format string, args ...any) { Default().output(2, LevelCritical, format, args...) }
