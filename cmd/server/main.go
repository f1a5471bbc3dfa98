package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"booklake/internal/app"
	"booklake/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	exec, closer, err := app.OpenExecutor(ctx, cfg, logger)
	if err != nil {
		logger.Error("open warehouse", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer() //nolint:errcheck
	}

	a, err := app.New(app.Deps{Cfg: cfg, Exec: exec, Logger: logger})
	if err != nil {
		logger.Error("wire application", "error", err)
		os.Exit(1)
	}

	if err := app.RunServer(ctx, a, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
