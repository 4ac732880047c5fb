package logging

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLoggerFiltersBelowMinimum(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, LevelWarn)

	logger.Debugf("dropped %d", 1)
	logger.Infof("dropped %d", 2)
	logger.Warnf("kept %d", 3)
	logger.Criticalf("kept %d", 4)

	records := sink.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}
	if records[0].Level != LevelWarn || records[0].Message != "kept 3" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Level != LevelCritical || records[1].Message != "kept 4" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestLoggerThresholdAdjustable(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, LevelInfo)

	logger.Tracef("dropped")
	logger.SetMinimum(LevelTrace)
	logger.Tracef("kept")

	records := sink.Records()
	if len(records) != 1 || records[0].Message != "kept" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoggerCapturesCallSite(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, LevelTrace)

	logger.Infof("hello %s", "world")

	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.File != "logger_test.go" {
		t.Fatalf("expected call-site file logger_test.go, got %q", rec.File)
	}
	if rec.Line <= 0 {
		t.Fatalf("expected positive line, got %d", rec.Line)
	}
	if !strings.Contains(rec.Function, "TestLoggerCapturesCallSite") {
		t.Fatalf("expected function name in %q", rec.Function)
	}
	if rec.Message != "hello world" {
		t.Fatalf("unexpected message %q", rec.Message)
	}
}

func TestLoggerStampsWithInjectedClock(t *testing.T) {
	sink := NewMemorySink()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	logger := New(sink, LevelTrace).WithClock(ClockFunc(func() time.Time { return fixed }))

	logger.Errorf("boom")

	records := sink.Records()
	if len(records) != 1 || !records[0].Time.Equal(fixed) {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLoggerConcurrentWriters(t *testing.T) {
	sink := NewMemorySink()
	logger := New(sink, LevelTrace)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				logger.Infof("worker %d message %d", n, j)
			}
		}(i)
	}
	wg.Wait()

	if got := len(sink.Records()); got != 400 {
		t.Fatalf("expected 400 records, got %d", got)
	}
}

func TestLevelString(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{LevelVerbose, "VERBOSE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelCritical, "CRITICAL"},
		{Level(99), "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Fatalf("Level(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}
