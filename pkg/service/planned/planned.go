// Package planned implements planned payment execution: a due payment is
// realized into a transaction through the ledger mutator, then either removed
// (one-off) or rescheduled by its recurrence rule.
package planned

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"github.com/pocketledger/pocketledger/pkg/service/ledger"
)

// Service manages planned payments.
type Service struct {
	uow      repository.UnitOfWork
	ledger   *ledger.Service
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// New creates a planned payment service.
func New(uow repository.UnitOfWork, ledgerSvc *ledger.Service, logger *slog.Logger) *Service {
	return &Service{
		uow:      uow,
		ledger:   ledgerSvc,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreatePayment is the command for scheduling a payment.
type CreatePayment struct {
	UserID       uuid.UUID              `validate:"required"`
	WalletID     uuid.UUID              `validate:"required"`
	DestWalletID *uuid.UUID             ``
	Title        string                 `validate:"max=100"`
	Kind         domain.TransactionKind `validate:"required"`
	Amount       int64                  `validate:"required,gt=0"`
	CategoryID   *uuid.UUID             ``
	Recurrence   domain.RecurrenceKind  `validate:"required"`
	Every        int                    `validate:"omitempty,gte=1"`
	DueDate      time.Time              `validate:"required"`
}

// Create schedules a payment, marked pending for sync.
func (s *Service) Create(ctx context.Context, cmd CreatePayment) (*domain.PlannedPayment, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !cmd.Kind.Valid() {
		return nil, domain.ErrInvalidTransactionKind
	}
	if !cmd.Recurrence.Valid() {
		return nil, domain.ErrInvalidRecurrence
	}
	if cmd.Kind == domain.KindTransfer && cmd.DestWalletID == nil {
		return nil, domain.ErrDestinationRequired
	}

	every := cmd.Every
	if every < 1 {
		every = 1
	}
	now := time.Now().UTC()
	p := &domain.PlannedPayment{
		ID:           uuid.New(),
		UserID:       cmd.UserID,
		WalletID:     cmd.WalletID,
		DestWalletID: cmd.DestWalletID,
		Title:        cmd.Title,
		Kind:         cmd.Kind,
		Amount:       cmd.Amount,
		CategoryID:   cmd.CategoryID,
		Recurrence:   cmd.Recurrence,
		Every:        every,
		DueDate:      cmd.DueDate,
		PendingSync:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.uow.PlannedPayments().Save(ctx, p); err != nil {
		return nil, fmt.Errorf("persist planned payment: %w", err)
	}
	s.logger.Info("planned payment scheduled", "id", p.ID, "due", p.DueDate, "recurrence", p.Recurrence)
	return p, nil
}

// List returns all of the owner's planned payments.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]domain.PlannedPayment, error) {
	return s.uow.PlannedPayments().ListByOwner(ctx, owner)
}

// ListDue returns the owner's payments due as of now.
func (s *Service) ListDue(ctx context.Context, owner uuid.UUID) ([]domain.PlannedPayment, error) {
	all, err := s.uow.PlannedPayments().ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	now := s.now()
	due := all[:0]
	for _, p := range all {
		if p.IsDue(now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// Process realizes the payment into a transaction, then deletes a one-off
// payment or advances a recurring one to its next due date. Realization and
// rescheduling commit in one unit of work: money never moves while the
// payment stays due, so a retry cannot double-charge.
func (s *Service) Process(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	p, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		tx, err = s.ledger.CreateIn(ctx, uow, ledger.CreateTransaction{
			UserID:       p.UserID,
			WalletID:     p.WalletID,
			DestWalletID: p.DestWalletID,
			Kind:         p.Kind,
			Amount:       p.Amount,
			CategoryID:   p.CategoryID,
			Note:         p.Title,
			OccurredAt:   s.now().UTC(),
		})
		if err != nil {
			return err
		}
		return s.advanceOrDelete(ctx, uow, p)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("planned payment processed", "id", p.ID, "transaction", tx.ID)
	return tx, nil
}

// Skip advances the due date (or deletes a one-off payment) without creating
// a transaction.
func (s *Service) Skip(ctx context.Context, userID, id uuid.UUID) error {
	p, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.advanceOrDelete(ctx, s.uow, p); err != nil {
		return err
	}
	s.logger.Info("planned payment skipped", "id", p.ID)
	return nil
}

// Delete removes a planned payment without executing it.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.get(ctx, userID, id); err != nil {
		return err
	}
	return s.uow.PlannedPayments().Delete(ctx, id)
}

func (s *Service) advanceOrDelete(ctx context.Context, uow repository.UnitOfWork, p *domain.PlannedPayment) error {
	if p.Recurrence == domain.RecurrenceOnce {
		return uow.PlannedPayments().Delete(ctx, p.ID)
	}
	p.DueDate = p.NextDue()
	p.PendingSync = true
	p.UpdatedAt = time.Now().UTC()
	return uow.PlannedPayments().Save(ctx, p)
}

func (s *Service) get(ctx context.Context, userID, id uuid.UUID) (*domain.PlannedPayment, error) {
	p, err := s.uow.PlannedPayments().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrPlannedPaymentNotFound
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, domain.ErrPlannedPaymentNotFound
	}
	return p, nil
}
