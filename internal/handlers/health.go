package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jagadeesh/repofeed/internal/store"
)

// Health reports whether the event store answers a ping.
func Health(s store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"ok":     false,
				"status": "unhealthy",
				"reason": "store_not_configured",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 1*time.Second)
		defer cancel()

		if err := s.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"ok":     false,
				"status": "unhealthy",
				"reason": "store_unreachable",
			})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"ok":     true,
			"status": "healthy",
		})
	}
}
