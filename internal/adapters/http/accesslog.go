package http

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AccessLogMiddleware logs HTTP requests with structured slog output.
// Logs: method, path, status, latency, traveler ID, request ID, and error.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()
		requestID := c.Get(fiber.HeaderXRequestID, "unknown")

		err := c.Next()

		status := c.Response().StatusCode()
		latency := time.Since(start)

		attrs := []slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("latency", latency.String()),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		}
		if tid := c.Get("X-Traveler-ID"); tid != "" {
			attrs = append(attrs, slog.String("traveler_id", tid))
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			level = slog.LevelError
		}

		slog.LogAttrs(c.Context(), level, fmt.Sprintf("%s %s", method, path), attrs...)

		return err
	}
}
