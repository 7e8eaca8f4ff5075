package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP. The panic route is
	// exempt; an SOS must never bounce off a limiter.
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/v1/safety/panic"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Post("/safety/location", timeout.NewWithContext(ReportLocationHandler(deps), 15*time.Second))
	v1.Post("/safety/panic", timeout.NewWithContext(TriggerPanicHandler(deps), 15*time.Second))
	v1.Post("/safety/checkin", timeout.NewWithContext(CheckinHandler(deps), 15*time.Second))
	v1.Get("/safety/status", timeout.NewWithContext(GetStatusHandler(deps), 15*time.Second))
	v1.Get("/safety/locations", timeout.NewWithContext(ListLocationsHandler(deps), 15*time.Second))
	v1.Get("/alerts", timeout.NewWithContext(ListAlertsHandler(deps), 15*time.Second))
	v1.Post("/alerts/:id/acknowledge", timeout.NewWithContext(AcknowledgeAlertHandler(deps), 15*time.Second))
	v1.Post("/alerts/:id/resolve", timeout.NewWithContext(ResolveAlertHandler(deps), 15*time.Second))
	v1.Get("/responders/nearest", timeout.NewWithContext(NearestResponderHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
