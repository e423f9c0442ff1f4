package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/service/planned"
)

type CreatePlannedRequest struct {
	WalletID     string    `json:"wallet_id" validate:"required,uuid"`
	DestWalletID *string   `json:"dest_wallet_id" validate:"omitempty,uuid"`
	Title        string    `json:"title" validate:"max=100"`
	Kind         string    `json:"kind" validate:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount       int64     `json:"amount" validate:"required,gt=0"`
	CategoryID   *string   `json:"category_id" validate:"omitempty,uuid"`
	Recurrence   string    `json:"recurrence" validate:"required,oneof=ONCE DAILY WEEKLY MONTHLY YEARLY"`
	Every        int       `json:"every" validate:"omitempty,gte=1"`
	DueDate      time.Time `json:"due_date" validate:"required"`
}

// PlannedRoutes registers the planned payment endpoints.
//
// Routes:
//   - POST   /planned-payments              : Schedule a payment.
//   - GET    /planned-payments              : List scheduled payments.
//   - GET    /planned-payments/due          : List payments due now.
//   - POST   /planned-payments/:id/process  : Realize a due payment as a transaction.
//   - POST   /planned-payments/:id/skip     : Advance a payment without realizing it.
//   - DELETE /planned-payments/:id          : Remove a scheduled payment.
func PlannedRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Post("/planned-payments", CreatePlanned(deps))
	app.Get("/planned-payments", ListPlanned(deps))
	app.Get("/planned-payments/due", ListDuePlanned(deps))
	app.Post("/planned-payments/:id/process", ProcessPlanned(deps))
	app.Post("/planned-payments/:id/skip", SkipPlanned(deps))
	app.Delete("/planned-payments/:id", DeletePlanned(deps))
}

func CreatePlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[CreatePlannedRequest](c)
		if err != nil {
			return nil
		}
		cmd := planned.CreatePayment{
			UserID:     deps.Owner,
			Title:      req.Title,
			Kind:       domain.TransactionKind(req.Kind),
			Amount:     req.Amount,
			Recurrence: domain.RecurrenceKind(req.Recurrence),
			Every:      req.Every,
			DueDate:    req.DueDate,
		}
		walletID, err := uuid.Parse(req.WalletID)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
		}
		cmd.WalletID = walletID
		if req.DestWalletID != nil {
			dest, err := uuid.Parse(*req.DestWalletID)
			if err != nil {
				return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
			}
			cmd.DestWalletID = &dest
		}
		if req.CategoryID != nil {
			cat, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
			}
			cmd.CategoryID = &cat
		}
		p, err := deps.Planned.Create(c.Context(), cmd)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Payment scheduled", p)
	}
}

func ListPlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, err := deps.Planned.List(c.Context(), deps.Owner)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Planned payments", payments)
	}
}

func ListDuePlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payments, err := deps.Planned.ListDue(c.Context(), deps.Owner)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Due planned payments", payments)
	}
}

func ProcessPlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		tx, err := deps.Planned.Process(c.Context(), deps.Owner, id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Payment processed", tx)
	}
}

func SkipPlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		if err := deps.Planned.Skip(c.Context(), deps.Owner, id); err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Payment skipped", nil)
	}
}

func DeletePlanned(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		if err := deps.Planned.Delete(c.Context(), deps.Owner, id); err != nil {
			return DomainErrorResponse(c, err)
		}
		deps.Runner.PropagateDelete(c.Context(), "planned-payments", id)
		return SuccessResponseJSON(c, fiber.StatusOK, "Payment deleted", nil)
	}
}
