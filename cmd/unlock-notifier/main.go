package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/coaching-courses/internal/app/notifier"
	"github.com/magabrotheeeer/coaching-courses/internal/config"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	var logger *slog.Logger
	if cfg.Env == "local" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	logger.Info("starting unlock-notifier", slog.String("env", cfg.Env), slog.String("schedule", cfg.Schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := notifier.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize notifier", sl.Err(err))
		os.Exit(1)
	}
	if err := app.Run(ctx); err != nil {
		logger.Error("notifier stopped with error", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("unlock-notifier stopped gracefully")
}
