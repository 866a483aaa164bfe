package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"fileforge/internal/http/middleware"
	"fileforge/internal/service"
)

// Deps bundles everything the HTTP layer needs. Keep handlers minimal and
// free of business logic; they translate requests to service calls.
type Deps struct {
	DB        *sql.DB
	Auth      service.AuthService
	APIKeys   service.APIKeyService
	Documents service.DocumentService
	Convert   service.ConvertService

	SessionCookieName string
	AsyncEnabled      bool
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Health endpoint checks DB connectivity only.
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := d.DB.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	// Simple liveness probe.
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	v1 := app.Group("/api/v1")

	registerAuthRoutes(v1, d)

	authed := v1.Group("", middleware.Auth(d.Auth, d.APIKeys, d.SessionCookieName))
	limited := authed.Group("", middleware.NewRateLimiter().Handler())

	registerConvertRoutes(limited, d)
	registerDocumentRoutes(limited, d)

	// Key management is session-only: a leaked key must not be able to
	// mint or revoke keys.
	registerAPIKeyRoutes(authed.Group("/apikeys", middleware.SessionOnly()), d)
}
