package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger = deps.Logger

	// Warm the rate table; a cold cache is not fatal, conversion-dependent
	// operations fail until the next refresh succeeds.
	if err := deps.Rates.Refresh(context.Background()); err != nil {
		logger.Warn("initial exchange rate refresh failed", "error", err)
	}

	deps.Prober.Start()
	defer deps.Prober.Stop()

	deps.Runner.Start(context.Background())
	defer deps.Runner.Stop()

	fiberApp := webapi.New(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "address", addr, "owner", deps.Owner)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig)
		return fiberApp.Shutdown()
	}
}
