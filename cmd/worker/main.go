package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jagadeesh/repofeed/internal/bus/natsbus"
	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/storage"
	"github.com/jagadeesh/repofeed/internal/worker"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("event store open failed", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if cfg.NATSURL == "" {
		slog.Error("NATS_URL is required to run workers")
		os.Exit(1)
	}

	b, err := natsbus.Connect(cfg.NATSURL, "repofeed-worker")
	if err != nil {
		slog.Error("nats connect failed", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	consumer := worker.NewEventConsumer(s, cfg.WorkerInsertRPS)
	if err := consumer.Subscribe(ctx, b.Conn(), cfg.WorkerQueue); err != nil {
		slog.Error("subscribe failed", "error", err)
		os.Exit(1)
	}

	slog.Info("worker started", "queue", cfg.WorkerQueue, "insert_rps", cfg.WorkerInsertRPS)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("worker shutting down")
	cancel()
	time.Sleep(300 * time.Millisecond)
}
