package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jagadeesh/repofeed/internal/bus"
	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/format"
	"github.com/jagadeesh/repofeed/internal/handlers"
	"github.com/jagadeesh/repofeed/internal/ingest"
	"github.com/jagadeesh/repofeed/internal/store"
)

type Deps struct {
	Store store.Store
	// Bus, when set, receives accepted events instead of the store; a
	// worker process performs the insert.
	Bus bus.Bus
}

func New(cfg config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "repofeed-api",
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	origins := strings.TrimSpace(cfg.CORSAllowOrigins)
	if origins == "" {
		origins = "*"
	}

	// Baseline middleware.
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-GitHub-Event, X-GitHub-Delivery",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowCredentials: origins != "*",
	}))
	app.Use(logger.New())

	var sink ingest.Sink
	if deps.Bus != nil {
		sink = ingest.BusSink{Bus: deps.Bus}
	} else if deps.Store != nil {
		sink = ingest.StoreSink{Store: deps.Store}
	}

	// Routes.
	app.Get("/health", handlers.Health(deps.Store))
	app.Get("/ready", handlers.Health(deps.Store))

	webhook := handlers.NewWebhookHandler(ingest.New(sink))
	app.Post("/webhook/receiver", webhook.Receive())
	app.Get("/webhook/receiver", webhook.Info())

	feed := handlers.NewEventsHandler(deps.Store, format.New(cfg.UnknownAuthorDisplayName))
	app.Get("/api/events", feed.List())

	return app
}
