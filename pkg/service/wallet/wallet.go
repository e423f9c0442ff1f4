// Package wallet provides wallet lifecycle operations and owner-level
// aggregates. Balances are never mutated here; only the ledger mutator
// touches them.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/exchange"
	"github.com/pocketledger/pocketledger/pkg/money"
	"github.com/pocketledger/pocketledger/pkg/repository"
)

// Service manages wallets.
type Service struct {
	uow      repository.UnitOfWork
	rates    *exchange.Cache
	logger   *slog.Logger
	validate *validator.Validate
}

// New creates a wallet service.
func New(uow repository.UnitOfWork, rates *exchange.Cache, logger *slog.Logger) *Service {
	return &Service{uow: uow, rates: rates, logger: logger, validate: validator.New()}
}

// CreateWallet is the command for opening a wallet.
type CreateWallet struct {
	UserID   uuid.UUID `validate:"required"`
	Name     string    `validate:"required,max=100"`
	Currency string    `validate:"omitempty,len=3"`
}

// Create opens a wallet with zero balance, marked pending for sync.
func (s *Service) Create(ctx context.Context, cmd CreateWallet) (*domain.Wallet, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	w, err := domain.NewWallet(cmd.UserID, cmd.Name, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.uow.Wallets().Save(ctx, w); err != nil {
		return nil, fmt.Errorf("persist wallet: %w", err)
	}
	s.logger.Info("wallet created", "id", w.ID, "currency", w.Currency)
	return w, nil
}

// Get returns one of the owner's wallets.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Wallet, error) {
	w, err := s.uow.Wallets().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	if w.UserID != userID {
		return nil, domain.ErrWalletNotFound
	}
	return w, nil
}

// List returns all of the owner's wallets.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	return s.uow.Wallets().ListByOwner(ctx, owner)
}

// SetArchived archives or restores a wallet.
func (s *Service) SetArchived(ctx context.Context, userID, id uuid.UUID, archived bool) error {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	w.Archived = archived
	w.PendingSync = true
	w.UpdatedAt = time.Now().UTC()
	return s.uow.Wallets().Save(ctx, w)
}

// SetIncludedInTotal toggles whether the wallet counts towards net worth.
func (s *Service) SetIncludedInTotal(ctx context.Context, userID, id uuid.UUID, included bool) error {
	w, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	w.IncludedInTotal = included
	w.PendingSync = true
	w.UpdatedAt = time.Now().UTC()
	return s.uow.Wallets().Save(ctx, w)
}

// NetWorth sums the owner's included, unarchived wallet balances converted to
// the base currency. Wallets whose currency is missing from the rate table
// make the whole query fail rather than silently skew the total.
func (s *Service) NetWorth(ctx context.Context, owner uuid.UUID, base string) (int64, error) {
	wallets, err := s.uow.Wallets().ListByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	total, err := money.New(0, base)
	if err != nil {
		return 0, err
	}
	for _, w := range wallets {
		if !w.IncludedInTotal || w.Archived {
			continue
		}
		amount := w.Balance
		if w.Currency != base {
			amount, _, err = s.rates.Convert(w.Balance, w.Currency, base)
			if err != nil {
				return 0, fmt.Errorf("net worth for wallet %s: %w", w.ID, err)
			}
		}
		total, err = total.Add(money.NewFromData(amount, base))
		if err != nil {
			return 0, fmt.Errorf("net worth for wallet %s: %w", w.ID, err)
		}
	}
	return int64(total.Amount()), nil
}
