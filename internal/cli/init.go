// Package cli provides common initialization for the SmartSpend binaries:
// environment loading, logging, configuration, backend wiring and
// signal-driven shutdown.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartspend/internal/backend"
	"smartspend/internal/config"
	"smartspend/internal/ledger"
	applog "smartspend/internal/log"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT values
// and installs it as the slog default. Unknown levels fall back to info.
func SetupLogger(level, format, component string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{
		Level:     lvl,
		Format:    format,
		Component: component,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Invalid log level, using info", "value", level)
	}
	return logger
}

// Bootstrap loads .env and the configuration, sets up logging and validates
// the configuration. It exits the process on validation failure.
func Bootstrap(component string) (*config.Config, *applog.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel, cfg.LogFormat, component)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg, logger
}

// BackendOptions adjusts the backend a binary needs on top of the config.
type BackendOptions struct {
	RequireAMQP  bool
	EnableSheets bool
}

// InitBackend creates the store and optional broker and spreadsheet clients.
// It exits the process on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config, opts BackendOptions) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	bcfg.RequireAMQP = opts.RequireAMQP
	bcfg.EnableSheets = opts.EnableSheets && cfg.SheetsEnabled()

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "type", bcfg.Type)
		os.Exit(1)
	}
	return res
}

// LoadLedger creates the ledger manager over store and loads the persisted
// snapshot. It exits the process when the store cannot be read.
func LoadLedger(ctx context.Context, logger *applog.Logger, store ledger.StateStore, opts ...ledger.Option) *ledger.Manager {
	m := ledger.New(store, opts...)
	if err := m.Load(ctx); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	return m
}

// ReloadLedger is LoadLedger for processes that only read the shared store:
// nothing is written when the snapshot is missing.
func ReloadLedger(ctx context.Context, logger *applog.Logger, store ledger.StateStore, opts ...ledger.Option) *ledger.Manager {
	m := ledger.New(store, opts...)
	if err := m.Reload(ctx); err != nil {
		logger.Error("Failed to load ledger", "error", err)
		os.Exit(1)
	}
	return m
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that is closed once cleanup has run.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
