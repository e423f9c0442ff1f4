package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/service/ledger"
)

// TransactionRequest is shared by create and update; amounts are minor units.
type TransactionRequest struct {
	WalletID     string     `json:"wallet_id" validate:"required,uuid"`
	DestWalletID *string    `json:"dest_wallet_id" validate:"omitempty,uuid"`
	Kind         string     `json:"kind" validate:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount       int64      `json:"amount" validate:"required,gt=0"`
	CategoryID   *string    `json:"category_id" validate:"omitempty,uuid"`
	Note         string     `json:"note" validate:"max=255"`
	OccurredAt   *time.Time `json:"occurred_at"`
}

// TransactionRoutes registers the transaction endpoints.
//
// Routes:
//   - POST   /transactions      : Record a transaction (mutates wallet balances).
//   - GET    /transactions      : List the user's transactions.
//   - GET    /transactions/:id  : Fetch one transaction.
//   - PUT    /transactions/:id  : Rewrite a transaction (reverse old effect, apply new).
//   - DELETE /transactions/:id  : Delete a transaction (reverses its effect).
func TransactionRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Post("/transactions", CreateTransaction(deps))
	app.Get("/transactions", ListTransactions(deps))
	app.Get("/transactions/:id", GetTransaction(deps))
	app.Put("/transactions/:id", UpdateTransaction(deps))
	app.Delete("/transactions/:id", DeleteTransaction(deps))
}

func (r TransactionRequest) toCommand(owner uuid.UUID) (ledger.CreateTransaction, error) {
	cmd := ledger.CreateTransaction{
		UserID: owner,
		Kind:   domain.TransactionKind(r.Kind),
		Amount: r.Amount,
		Note:   r.Note,
	}
	walletID, err := uuid.Parse(r.WalletID)
	if err != nil {
		return cmd, err
	}
	cmd.WalletID = walletID
	if r.DestWalletID != nil {
		dest, err := uuid.Parse(*r.DestWalletID)
		if err != nil {
			return cmd, err
		}
		cmd.DestWalletID = &dest
	}
	if r.CategoryID != nil {
		cat, err := uuid.Parse(*r.CategoryID)
		if err != nil {
			return cmd, err
		}
		cmd.CategoryID = &cat
	}
	if r.OccurredAt != nil {
		cmd.OccurredAt = *r.OccurredAt
	} else {
		cmd.OccurredAt = time.Now().UTC()
	}
	return cmd, nil
}

func CreateTransaction(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[TransactionRequest](c)
		if err != nil {
			return nil
		}
		cmd, err := req.toCommand(deps.Owner)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
		}
		tx, err := deps.Ledger.Create(c.Context(), cmd)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Transaction recorded", tx)
	}
}

func ListTransactions(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		txs, err := deps.Ledger.ListByOwner(c.Context(), deps.Owner)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions", txs)
	}
}

func GetTransaction(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		tx, err := deps.Ledger.Get(c.Context(), deps.Owner, id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction", tx)
	}
}

func UpdateTransaction(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		req, err := BindAndValidate[TransactionRequest](c)
		if err != nil {
			return nil
		}
		cmd, err := req.toCommand(deps.Owner)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
		}
		tx, err := deps.Ledger.Update(c.Context(), deps.Owner, id, cmd)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", tx)
	}
}

func DeleteTransaction(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		if err := deps.Ledger.Delete(c.Context(), deps.Owner, id); err != nil {
			return DomainErrorResponse(c, err)
		}
		deps.Runner.PropagateDelete(c.Context(), "transactions", id)
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", nil)
	}
}
