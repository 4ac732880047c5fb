package telemetry

// Logger exposes the leveled logging surface engine components depend
// on. netforge/logging.Logger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Criticalf(format string, args ...any)
}

// Metrics exposes the counter surface engine components depend on.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)    {}
func (nopLogger) Infof(string, ...any)     {}
func (nopLogger) Warnf(string, ...any)     {}
func (nopLogger) Errorf(string, ...any)    {}
func (nopLogger) Criticalf(string, ...any) {}

// NopLogger returns a logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

type nopMetrics struct{}

func (nopMetrics) Add(string, uint64)   {}
func (nopMetrics) Store(string, uint64) {}

// NopMetrics returns a metrics sink that discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}
