// Package cli provides the startup and shutdown plumbing shared by the
// command entry points.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"denario/internal/backend"
	"denario/internal/config"
	applog "denario/internal/log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// SetupLogger builds the process logger from the configured level and
// format, tags it with a fresh session id and makes it the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logCfg := applog.DefaultConfig()
	logCfg.Level = cfg.SlogLevel()
	if cfg.LogFormat == "json" {
		logCfg.Format = "json"
	}

	logger := applog.New(logCfg).With(applog.FieldSessionID, uuid.NewString())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is fine; anything else is reported.
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ValidateConfig checks the configuration and exits the process when it is
// unusable.
func ValidateConfig(logger *applog.Logger, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
}

// OpenBackend creates the configured store pair or exits the process on
// failure.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid backend configuration",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize backend",
			applog.FieldError, err,
			applog.FieldBackend, backendCfg.Type.String(),
			applog.FieldDBPath, backendCfg.SQLiteDBPath)
		os.Exit(1)
	}
	return res
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// CloseWithin runs close and gives up waiting after timeout. Close keeps
// running in the background if it overruns; the process is about to exit.
func CloseWithin(logger *applog.Logger, timeout time.Duration, close func() error) {
	done := make(chan error, 1)
	go func() { done <- close() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("Cleanup failed", applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
			return
		}
		logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
	case <-time.After(timeout):
		logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
	}
}
