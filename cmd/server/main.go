package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"netforge/internal/app"
	"netforge/internal/config"
	"netforge/internal/telemetry"
	"netforge/logging"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
	applyEnvOverrides(&cfg.Server)

	logger := logging.New(logging.NewStderrSink(), config.ParseLevel(cfg.Server.LogLevel))
	logging.SetDefault(logger)

	metrics := telemetry.NewCounters()
	server := app.New(app.Config{
		Server:  cfg.Server,
		Logger:  logger,
		Metrics: metrics,
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		logger.Infof("received %s, shutting down", sig)
		server.Stop()
	}()

	if err := server.Run(); err != nil {
		logger.Criticalf("server failed: %v", err)
		os.Exit(1)
	}
}

// applyEnvOverrides lets deployments tweak the hot knobs without a
// config file. Invalid values are reported and ignored.
func applyEnvOverrides(cfg *config.Server) {
	if raw := os.Getenv("NETFORGE_PORT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			cfg.Port = value
		} else {
			logging.Warnf("invalid NETFORGE_PORT=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("NETFORGE_LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
}
