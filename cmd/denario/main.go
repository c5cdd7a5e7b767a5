package main

import (
	"context"
	"os"

	"denario/internal/balance"
	"denario/internal/cli"
	"denario/internal/config"
	applog "denario/internal/log"
	"denario/internal/services"
	"denario/internal/shell"

	"golang.org/x/sync/errgroup"
)

func main() {
	envErr := cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	if envErr != nil {
		logger.Warn("Ignoring .env file", applog.FieldError, envErr)
	}
	cli.ValidateConfig(logger, cfg)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	store := cli.OpenBackend(ctx, logger, cfg)

	term := shell.New(os.Stdin, os.Stdout, logger)
	ctrl := services.NewController(store.Ledger, balance.NewStore(store.Preferences), term, logger)

	logger.InfoContext(ctx, "Starting denario",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, cfg.DataBackend)

	if err := ctrl.Init(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to load balance", applog.FieldError, err)
		cli.CloseWithin(logger, cfg.ShutdownTimeout, store.Close)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Leaving the shell ends the program
		defer stop()
		return term.Run(gctx, ctrl)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", applog.FieldOperation, applog.OpShutdown)
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("Shell stopped with error", applog.FieldError, err)
		exitCode = 1
	}

	cli.CloseWithin(logger, cfg.ShutdownTimeout, store.Close)
	os.Exit(exitCode)
}
