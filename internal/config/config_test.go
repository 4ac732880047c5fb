package config

import (
	"os"
	"path/filepath"
	"testing"

	"netforge/logging"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != DefaultServer() {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Client != DefaultClient() {
		t.Fatalf("unexpected client defaults: %+v", cfg.Client)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netforge.toml")
	doc := `
[server]
sim_hz = 30
port = 9000

[client]
send_period_ms = 33
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.SimHz != 30 || cfg.Server.Port != 9000 {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Server.NetHz != 20 || cfg.Server.MaxPeers != 64 {
		t.Fatalf("defaults not preserved: %+v", cfg.Server)
	}
	if cfg.Client.SendPeriodMS != 33 || cfg.Client.ServerPort != 7777 {
		t.Fatalf("client overlay wrong: %+v", cfg.Client)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nsim_hz="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNormalizedRepairsOutOfRangeValues(t *testing.T) {
	sink := logging.NewMemorySink()
	logger := logging.New(sink, logging.LevelTrace)

	bad := Server{SimHz: 0, NetHz: -1, InputDelayTicks: -2, RingCapacity: 0, MaxPeers: 0, Port: 70000}
	got := bad.Normalized(logger)
	if got != DefaultServer() {
		t.Fatalf("expected full repair to defaults, got %+v", got)
	}
	warns := 0
	for _, rec := range sink.Records() {
		if rec.Level == logging.LevelWarn {
			warns++
		}
	}
	if warns != 6 {
		t.Fatalf("expected 6 repair warnings, got %d", warns)
	}
}

func TestNormalizedKeepsValidValues(t *testing.T) {
	valid := Server{SimHz: 120, NetHz: 30, InputDelayTicks: 2, RingCapacity: 512, MaxPeers: 8, Port: 8080, LogLevel: "debug"}
	if got := valid.Normalized(nil); got != valid {
		t.Fatalf("valid config was altered: %+v", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want logging.Level
	}{
		{"trace", logging.LevelTrace},
		{"DEBUG", logging.LevelDebug},
		{"info", logging.LevelInfo},
		{"", logging.LevelInfo},
		{"warning", logging.LevelWarn},
		{"error", logging.LevelError},
		{"critical", logging.LevelCritical},
		{"bogus", logging.LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
