package webapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/service/loan"
)

type CreateLoanRequest struct {
	Counterpart string `json:"counterpart" validate:"required,max=100"`
	Principal   int64  `json:"principal" validate:"required,gt=0"`
	Direction   string `json:"direction" validate:"required,oneof=LENT BORROWED"`
	Currency    string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type AddLoanEntryRequest struct {
	WalletID          *string    `json:"wallet_id" validate:"omitempty,uuid"`
	Amount            int64      `json:"amount" validate:"required,gt=0"`
	Date              *time.Time `json:"date"`
	Interest          bool       `json:"interest"`
	CreateTransaction bool       `json:"create_transaction"`
}

// LoanRoutes registers the loan endpoints.
//
// Routes:
//   - POST   /loans                     : Record a loan.
//   - GET    /loans                     : List the user's loans.
//   - GET    /loans/:id                 : Fetch one loan.
//   - GET    /loans/:id/entries         : List a loan's entries.
//   - POST   /loans/:id/entries         : Record a repayment or interest entry.
//   - DELETE /loans/entries/:entryID    : Remove an entry and reverse its effects.
func LoanRoutes(app *fiber.App, deps *initializer.Deps) {
	app.Post("/loans", CreateLoan(deps))
	app.Get("/loans", ListLoans(deps))
	app.Get("/loans/:id", GetLoan(deps))
	app.Get("/loans/:id/entries", ListLoanEntries(deps))
	app.Post("/loans/:id/entries", AddLoanEntry(deps))
	app.Delete("/loans/entries/:entryID", DeleteLoanEntry(deps))
}

func CreateLoan(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := BindAndValidate[CreateLoanRequest](c)
		if err != nil {
			return nil
		}
		l, err := deps.Loans.Create(c.Context(), loan.CreateLoan{
			UserID:      deps.Owner,
			Counterpart: req.Counterpart,
			Principal:   req.Principal,
			Direction:   domain.LoanDirection(req.Direction),
			Currency:    req.Currency,
		})
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Loan recorded", l)
	}
}

func ListLoans(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loans, err := deps.Loans.List(c.Context(), deps.Owner)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loans", loans)
	}
}

func GetLoan(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		l, err := deps.Loans.Get(c.Context(), deps.Owner, id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan", l)
	}
}

func ListLoanEntries(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		entries, err := deps.Loans.Entries(c.Context(), deps.Owner, id)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan entries", entries)
	}
}

func AddLoanEntry(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c, "id")
		if err != nil {
			return nil
		}
		req, err := BindAndValidate[AddLoanEntryRequest](c)
		if err != nil {
			return nil
		}
		cmd := loan.AddEntry{
			UserID:            deps.Owner,
			LoanID:            id,
			Amount:            req.Amount,
			Interest:          req.Interest,
			CreateTransaction: req.CreateTransaction,
		}
		if req.WalletID != nil {
			walletID, err := uuid.Parse(*req.WalletID)
			if err != nil {
				return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid id", err.Error())
			}
			cmd.WalletID = &walletID
		}
		if req.Date != nil {
			cmd.Date = *req.Date
		} else {
			cmd.Date = time.Now().UTC()
		}
		entry, err := deps.Loans.AddEntry(c.Context(), cmd)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Loan entry recorded", entry)
	}
}

func DeleteLoanEntry(deps *initializer.Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entryID, err := pathID(c, "entryID")
		if err != nil {
			return nil
		}
		if err := deps.Loans.DeleteEntry(c.Context(), deps.Owner, entryID); err != nil {
			return DomainErrorResponse(c, err)
		}
		deps.Runner.PropagateDelete(c.Context(), "loan-entries", entryID)
		return SuccessResponseJSON(c, fiber.StatusOK, "Loan entry deleted", nil)
	}
}
