package handlers

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jagadeesh/repofeed/internal/ingest"
)

type WebhookHandler struct {
	gate *ingest.Gate
}

func NewWebhookHandler(gate *ingest.Gate) *WebhookHandler {
	return &WebhookHandler{gate: gate}
}

// Receive always answers 200; the gate decides the body.
func (h *WebhookHandler) Receive() fiber.Handler {
	return func(c *fiber.Ctx) error {
		d := ingest.Delivery{
			Tag:        strings.TrimSpace(c.Get("X-GitHub-Event")),
			DeliveryID: strings.TrimSpace(c.Get("X-GitHub-Delivery")),
			// Fiber reuses the request buffer once the handler returns.
			Body: append([]byte(nil), c.Body()...),
		}

		slog.Debug("webhook delivery received",
			"x_github_event", d.Tag,
			"x_github_delivery", d.DeliveryID,
			"body_size_bytes", len(d.Body),
			"remote_ip", c.IP(),
		)

		resp := h.gate.Ingest(c.UserContext(), d)
		return c.Status(resp.Status).JSON(resp.Body)
	}
}

func (h *WebhookHandler) Info() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": ingest.MsgReceiverInfo,
		})
	}
}
