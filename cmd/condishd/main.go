package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"condish/internal/config"
	"condish/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	d, err := build(ctx, cfg, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "condishd startup failed", "daemon_startup_failed", logging.Error(err))
		log.Fatalf("build daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.Hint("check for another running condishd"),
		)
		return
	}
	logger.Info("condishd listening", logging.String("addr", d.Addr()))

	<-ctx.Done()
	logger.Info("condishd shutting down")
}
