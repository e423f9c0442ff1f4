package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/service/wallet"
)

type CreateWalletRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Currency string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type SetFlagRequest struct {
	Value bool `json:"value"`
}

// WalletRoutes registers the wallet endpoints.
//
// Routes:
//   - POST   /wallets                : Create a wallet.
//   - GET    /wallets                : List the user's wallets.
//   - GET    /wallets/net-worth     : Total balance across included wallets, in the base currency.
//   - GET    /wallets/:id            : Fetch one wallet.
//   - PATCH  /wallets/:id/archived   : Archive or unarchive a wallet.
//   - PATCH  /wallets/:id/included   : Include or exclude a wallet from the total.
func WalletRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Post("/wallets", CreateWallet(deps))
	app.Get("/wallets", ListWallets(deps))
	app.Get("/wallets/net-worth", NetWorth(deps))
	app.Get("/wallets/:id", GetWallet(deps))
	app.Patch("/wallets/:id/archived", SetArchived(deps))
	app.Patch("/wallets/:id/included", SetIncluded(deps))
}

func CreateWallet(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[CreateWalletRequest](c)
		if err != nil {
			return nil
		}
		w, err := deps.Wallets.Create(c.Context(), wallet.CreateWallet{
			UserID:   deps.Owner,
			Name:     req.Name,
			Currency: req.Currency,
		})
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Wallet created", w)
	}
}

func ListWallets(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		wallets, err := deps.Wallets.List(c.Context(), deps.Owner)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Wallets", wallets)
	}
}

func GetWallet(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		w, err := deps.Wallets.Get(c.Context(), deps.Owner, id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Wallet", w)
	}
}

func SetArchived(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		req, err := BindAndValidate[SetFlagRequest](c)
		if err != nil {
			return nil
		}
		if err := deps.Wallets.SetArchived(c.Context(), deps.Owner, id, req.Value); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Wallet updated", nil)
	}
}

func SetIncluded(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		req, err := BindAndValidate[SetFlagRequest](c)
		if err != nil {
			return nil
		}
		if err := deps.Wallets.SetIncludedInTotal(c.Context(), deps.Owner, id, req.Value); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Wallet updated", nil)
	}
}

func NetWorth(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		base := c.Query("base", deps.Rates.Base())
		total, err := deps.Wallets.NetWorth(c.Context(), deps.Owner, base)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Net worth", fiber.Map{
			"currency": base,
			"total":    total,
		})
	}
}
