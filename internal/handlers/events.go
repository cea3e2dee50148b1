package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jagadeesh/repofeed/internal/format"
	"github.com/jagadeesh/repofeed/internal/store"
)

type EventsHandler struct {
	store store.Store
	fmt   *format.Formatter
}

func NewEventsHandler(s store.Store, f *format.Formatter) *EventsHandler {
	if f == nil {
		f = format.New("")
	}
	return &EventsHandler{store: s, fmt: f}
}

// List returns the most recent events, newest first, already rendered for
// display.
func (h *EventsHandler) List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if h.store == nil {
			return unavailable(c, store.ErrNotConfigured)
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		list, err := h.store.FindRecent(ctx, store.MaxRecent)
		if err != nil {
			slog.Error("failed to read recent events", "error", err)
			return unavailable(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(h.fmt.FormatAll(list))
	}
}

func unavailable(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"events": []format.View{},
		"error":  err.Error(),
	})
}
