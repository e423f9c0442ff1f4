package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pocketledger/pocketledger/infra/initializer"
)

type SetBaseRequest struct {
	Currency string `json:"currency" validate:"required,len=3,uppercase"`
}

type ConvertRequest struct {
	Amount int64  `json:"amount" validate:"required"`
	From   string `json:"from" validate:"required,len=3,uppercase"`
	To     string `json:"to" validate:"required,len=3,uppercase"`
}

// RateRoutes registers the exchange rate endpoints.
//
// Routes:
//   - GET  /rates          : Base currency and cache freshness.
//   - PUT  /rates/base     : Switch the base currency and refresh.
//   - POST /rates/refresh  : Force-refresh the rate table.
//   - POST /rates/convert  : Convert an amount between currencies.
func RateRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Get("/rates", GetRates(deps))
	app.Put("/rates/base", SetBase(deps))
	app.Post("/rates/refresh", RefreshRates(deps))
	app.Post("/rates/convert", Convert(deps))
}

// GetRates reports the base currency and whether the cached table is stale.
func GetRates(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return SuccessResponseJSON(c, fiber.StatusOK, "Rates", fiber.Map{
			"base":  deps.Rates.Base(),
			"stale": deps.Rates.Stale(),
		})
	}
}

// SetBase switches the base currency and refreshes the rate table against it.
func SetBase(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[SetBaseRequest](c)
		if err != nil {
			return nil
		}
		if err := deps.Rates.SetBase(c.Context(), req.Currency); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Base currency updated", fiber.Map{
			"base": deps.Rates.Base(),
		})
	}
}

// RefreshRates force-refreshes the cached rate table from the provider.
func RefreshRates(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Rates.Refresh(c.Context()); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Rates refreshed", nil)
	}
}

// Convert converts an amount between two currencies using the cached table.
func Convert(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[ConvertRequest](c)
		if err != nil {
			return nil
		}
		converted, rate, err := deps.Rates.Convert(req.Amount, req.From, req.To)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Converted", fiber.Map{
			"amount": converted,
			"rate":   rate,
		})
	}
}
