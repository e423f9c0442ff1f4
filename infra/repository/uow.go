package repository

import (
	"context"

	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and store access in one abstraction.
// Stores handed out inside Do are bound to the transaction session, so a
// multi-entity ledger mutation commits atomically or not at all.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a database transaction, passing a UoW bound to it.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: tx})
	})
}

// Wallets implements repository.UnitOfWork.
func (u *UoW) Wallets() repository.Store[domain.Wallet] {
	return NewStore[domain.Wallet](u.db)
}

// Transactions implements repository.UnitOfWork.
func (u *UoW) Transactions() repository.Store[domain.Transaction] {
	return NewStore[domain.Transaction](u.db)
}

// Loans implements repository.UnitOfWork.
func (u *UoW) Loans() repository.Store[domain.Loan] {
	return NewStore[domain.Loan](u.db)
}

// LoanEntries implements repository.UnitOfWork.
func (u *UoW) LoanEntries() repository.Store[domain.LoanEntry] {
	return NewStore[domain.LoanEntry](u.db)
}

// PlannedPayments implements repository.UnitOfWork.
func (u *UoW) PlannedPayments() repository.Store[domain.PlannedPayment] {
	return NewStore[domain.PlannedPayment](u.db)
}

// Categories implements repository.UnitOfWork.
func (u *UoW) Categories() repository.Store[domain.Category] {
	return NewStore[domain.Category](u.db)
}

// Goals implements repository.UnitOfWork.
func (u *UoW) Goals() repository.Store[domain.Goal] {
	return NewStore[domain.Goal](u.db)
}

// Portfolios implements repository.UnitOfWork.
func (u *UoW) Portfolios() repository.Store[domain.Portfolio] {
	return NewStore[domain.Portfolio](u.db)
}

// PortfolioInstruments implements repository.UnitOfWork.
func (u *UoW) PortfolioInstruments() repository.Store[domain.PortfolioInstrument] {
	return NewStore[domain.PortfolioInstrument](u.db)
}
