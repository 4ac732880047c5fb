package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleSink renders records as single text lines to a writer.
type ConsoleSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleSink constructs a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

// NewStderrSink constructs the conventional process sink.
func NewStderrSink() *ConsoleSink {
	return NewConsoleSink(os.Stderr)
}

// Write implements Sink.
func (s *ConsoleSink) Write(rec Record) error {
	if s == nil || s.w == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s %s %s:%d %s: %s\n",
		rec.Time.Format("2006/01/02 15:04:05.000"),
		rec.Level,
		rec.File,
		rec.Line,
		rec.Function,
		rec.Message,
	)
	return err
}

// MemorySink retains records in memory for test assertions.
type MemorySink struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemorySink constructs an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{records: make([]Record, 0)}
}

// Write implements Sink.
func (s *MemorySink) Write(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of the captured records.
func (s *MemorySink) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make([]Record, len(s.records))
	copy(copied, s.records)
	return copied
}

// Reset discards captured records.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}
