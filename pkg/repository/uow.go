package repository

import (
	"context"

	"github.com/pocketledger/pocketledger/pkg/domain"
)

// UnitOfWork provides a transaction boundary and store access in one
// abstraction. All stores obtained inside Do share the same database session,
// so a ledger mutation can stage wallet balance writes and movement records
// together and commit them atomically: a crash mid-mutation rolls back the
// whole unit instead of leaving an un-auditable balance change.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. The UnitOfWork passed to
	// fn yields stores bound to that transaction. If fn returns an error the
	// transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Wallets() Store[domain.Wallet]
	Transactions() Store[domain.Transaction]
	Loans() Store[domain.Loan]
	LoanEntries() Store[domain.LoanEntry]
	PlannedPayments() Store[domain.PlannedPayment]
	Categories() Store[domain.Category]
	Goals() Store[domain.Goal]
	Portfolios() Store[domain.Portfolio]
	PortfolioInstruments() Store[domain.PortfolioInstrument]
}
