// Package webapi exposes the device-local HTTP API over Fiber. It is the
// surface the on-device UI talks to; it never faces the open internet, but it
// still rate-limits and recovers like one that does.
package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pocketledger/pocketledger/infra/initializer"
)

// New builds the Fiber app with all routes registered.
func New(deps *initializer.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	WalletRoutes(app, deps)
	TransactionRoutes(app, deps)
	LoanRoutes(app, deps)
	PlannedRoutes(app, deps)
	SyncRoutes(app, deps)
	RateRoutes(app, deps)

	return app
}
