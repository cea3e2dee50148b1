package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Shutdown stops the HTTP server, waiting for in-flight deliveries until
// ctx expires, then releases the bus before the store so no publish or
// insert outlives its connection.
func Shutdown(ctx context.Context, app *fiber.App, deps Deps) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Shutdown()
	}()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errCh:
	}

	if deps.Bus != nil {
		deps.Bus.Close()
	}
	if deps.Store != nil {
		if cerr := deps.Store.Close(); cerr != nil {
			slog.Error("event store close failed", "error", cerr)
			if err == nil {
				err = cerr
			}
		}
	}
	return err
}
