package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/storage"
)

func main() {
	config.LoadDotenv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Open without auto-migrate so the explicit run below is the only one.
	cfg.AutoMigrate = false
	s, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("event store open failed", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := storage.Migrate(ctx, s); err != nil {
		slog.Error("migrate up failed", "error", err)
		os.Exit(1)
	}

	slog.Info("migrations applied")
}
