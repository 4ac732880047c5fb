package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"netforge/internal/telemetry"
	"netforge/logging"
)

// Server holds the engine and listener tunables.
type Server struct {
	SimHz           int    `toml:"sim_hz"`
	NetHz           int    `toml:"net_hz"`
	InputDelayTicks int    `toml:"input_delay_ticks"`
	RingCapacity    int    `toml:"ring_capacity"`
	MaxPeers        int    `toml:"max_peers"`
	Port            int    `toml:"port"`
	LogLevel        string `toml:"log_level"`
}

// Client holds the reference client tunables.
type Client struct {
	SendPeriodMS int    `toml:"send_period_ms"`
	ServerHost   string `toml:"server_host"`
	ServerPort   int    `toml:"server_port"`
	LogLevel     string `toml:"log_level"`
}

// Config is the full TOML document.
type Config struct {
	Server Server `toml:"server"`
	Client Client `toml:"client"`
}

// DefaultServer returns the stock server tuning: 60 Hz simulation,
// 20 Hz network, one tick of input delay.
func DefaultServer() Server {
	return Server{
		SimHz:           60,
		NetHz:           20,
		InputDelayTicks: 1,
		RingCapacity:    256,
		MaxPeers:        64,
		Port:            7777,
		LogLevel:        "info",
	}
}

// DefaultClient returns the stock client tuning: one input per 16 ms
// against a local server.
func DefaultClient() Client {
	return Client{
		SendPeriodMS: 16,
		ServerHost:   "127.0.0.1",
		ServerPort:   7777,
		LogLevel:     "info",
	}
}

// Default returns the full stock document.
func Default() Config {
	return Config{Server: DefaultServer(), Client: DefaultClient()}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults untouched; a missing or malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalized replaces out-of-range server values with their defaults,
// warning once per repaired field.
func (s Server) Normalized(logger telemetry.Logger) Server {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	def := DefaultServer()
	repaired := s
	if repaired.SimHz <= 0 {
		logger.Warnf("sim_hz %d out of range, using %d", repaired.SimHz, def.SimHz)
		repaired.SimHz = def.SimHz
	}
	if repaired.NetHz <= 0 {
		logger.Warnf("net_hz %d out of range, using %d", repaired.NetHz, def.NetHz)
		repaired.NetHz = def.NetHz
	}
	if repaired.InputDelayTicks < 0 {
		logger.Warnf("input_delay_ticks %d out of range, using %d", repaired.InputDelayTicks, def.InputDelayTicks)
		repaired.InputDelayTicks = def.InputDelayTicks
	}
	if repaired.RingCapacity <= 0 {
		logger.Warnf("ring_capacity %d out of range, using %d", repaired.RingCapacity, def.RingCapacity)
		repaired.RingCapacity = def.RingCapacity
	}
	if repaired.MaxPeers <= 0 {
		logger.Warnf("max_peers %d out of range, using %d", repaired.MaxPeers, def.MaxPeers)
		repaired.MaxPeers = def.MaxPeers
	}
	if repaired.Port <= 0 || repaired.Port > 65535 {
		logger.Warnf("port %d out of range, using %d", repaired.Port, def.Port)
		repaired.Port = def.Port
	}
	return repaired
}

// ParseLevel maps a config string onto a log severity, defaulting to
// info for anything unrecognized.
func ParseLevel(name string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return logging.LevelTrace
	case "verbose":
		return logging.LevelVerbose
	case "debug":
		return logging.LevelDebug
	case "info", "":
		return logging.LevelInfo
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	case "critical":
		return logging.LevelCritical
	default:
		return logging.LevelInfo
	}
}
