package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netforge/internal/client"
	"netforge/internal/config"
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

	logger := logging.New(logging.NewStderrSink(), config.ParseLevel(cfg.Client.LogLevel))
	logging.SetDefault(logger)

	url := fmt.Sprintf("ws://%s:%d/", cfg.Client.ServerHost, cfg.Client.ServerPort)
	c, err := client.Dial(client.Config{
		URL:        url,
		SendPeriod: time.Duration(cfg.Client.SendPeriodMS) * time.Millisecond,
		Logger:     logger,
	})
	if err != nil {
		logger.Criticalf("%v", err)
		os.Exit(1)
	}
	c.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	sig := <-sigs
	logger.Infof("received %s, disconnecting", sig)
	c.Stop()

	if snap, ok := c.LastSnapshot(); ok {
		logger.Infof("final snapshot: tick=%d ackApplied=%d ackRecv=%d", snap.ServerTick, snap.AckApplied, snap.AckRecv)
	}
}
