package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/connectivity"
)

// SyncRoutes registers the synchronization endpoints.
//
// Routes:
//   - POST /sync/trigger : Run one sync cycle now (the "enter screen" trigger).
//   - GET  /sync/status  : Connectivity and per-entity pending counts.
func SyncRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Post("/sync/trigger", TriggerSync(deps))
	app.Get("/sync/status", SyncStatus(deps))
}

// TriggerSync runs a full cycle synchronously. Sync failures are deferred
// work, not request failures, so this always reports success once the cycle
// completes.
func TriggerSync(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Runner.Trigger(c.Context())
		return SuccessResponseJSON(c, fiber.StatusOK, "Sync cycle completed", nil)
	}
}

// SyncStatus reports connectivity and the pending-record count per entity.
func SyncStatus(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		pending := fiber.Map{}
		counts := []struct {
			name  string
			count func() (int64, error)
		}{
			{"wallets", func() (int64, error) { return deps.Uow.Wallets().CountPending(ctx, deps.Owner) }},
			{"transactions", func() (int64, error) { return deps.Uow.Transactions().CountPending(ctx, deps.Owner) }},
			{"loans", func() (int64, error) { return deps.Uow.Loans().CountPending(ctx, deps.Owner) }},
			{"loan_entries", func() (int64, error) { return deps.Uow.LoanEntries().CountPending(ctx, deps.Owner) }},
			{"planned_payments", func() (int64, error) { return deps.Uow.PlannedPayments().CountPending(ctx, deps.Owner) }},
			{"categories", func() (int64, error) { return deps.Uow.Categories().CountPending(ctx, deps.Owner) }},
			{"goals", func() (int64, error) { return deps.Uow.Goals().CountPending(ctx, deps.Owner) }},
			{"portfolios", func() (int64, error) { return deps.Uow.Portfolios().CountPending(ctx, deps.Owner) }},
			{"portfolio_instruments", func() (int64, error) { return deps.Uow.PortfolioInstruments().CountPending(ctx, deps.Owner) }},
		}
		for _, entry := range counts {
			n, err := entry.count()
			if err != nil {
				return DomainErrorResponse(c, err)
			}
			pending[entry.name] = n
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sync status", fiber.Map{
			"online":  deps.Prober.Current() == connectivity.Available,
			"pending": pending,
		})
	}
}
