package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jagadeesh/repofeed/internal/api"
	"github.com/jagadeesh/repofeed/internal/bus"
	"github.com/jagadeesh/repofeed/internal/bus/natsbus"
	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/storage"
	"github.com/jagadeesh/repofeed/internal/store"
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

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var eventStore store.Store
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	s, err := storage.Open(ctx, cfg)
	cancel()
	switch {
	case err == nil:
		eventStore = s
	case cfg.IsDev():
		// Deliveries are still acknowledged; /api/events and /health report 503.
		slog.Warn("event store unavailable; running without one", "error", err)
	default:
		slog.Error("event store open failed", "error", err)
		os.Exit(1)
	}

	var eventBus bus.Bus
	if cfg.NATSURL != "" {
		b, err := natsbus.Connect(cfg.NATSURL, "repofeed-api")
		if err != nil {
			slog.Error("nats connect failed", "error", err)
			os.Exit(1)
		}
		eventBus = b
		slog.Info("publishing accepted events to nats; run cmd/worker to persist them")
	}

	deps := api.Deps{Store: eventStore, Bus: eventBus}
	app := api.New(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", "addr", cfg.HTTPAddr)
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		// Fiber returns nil only on clean shutdown; treat any error as fatal.
		slog.Error("http server exited", "error", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := api.Shutdown(ctx, app, deps); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}
