// Package loan implements the ledger mutator for loans: entry application
// decrements the loan's remaining amount and may cascade a linked transaction
// with its wallet effect; entry deletion reverses both, in one unit of work.
package loan

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
	"github.com/pocketledger/pocketledger/pkg/utils"
)

// Service manages loans and their entries.
type Service struct {
	uow      repository.UnitOfWork
	logger   *slog.Logger
	validate *validator.Validate
	locks    *utils.KeyedMutex[uuid.UUID]
}

// New creates a loan service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{
		uow:      uow,
		logger:   logger,
		validate: validator.New(),
		locks:    utils.NewKeyedMutex[uuid.UUID](),
	}
}

// CreateLoan is the command for recording a new loan.
type CreateLoan struct {
	UserID      uuid.UUID            `validate:"required"`
	Counterpart string               `validate:"required,max=100"`
	Principal   int64                `validate:"required,gt=0"`
	Direction   domain.LoanDirection `validate:"required"`
	Currency    string               `validate:"omitempty,len=3"`
}

// Create records a loan with Remaining = Principal, marked pending.
func (s *Service) Create(ctx context.Context, cmd CreateLoan) (*domain.Loan, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	l, err := domain.NewLoan(cmd.UserID, cmd.Counterpart, cmd.Principal, cmd.Direction, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := s.uow.Loans().Save(ctx, l); err != nil {
		return nil, fmt.Errorf("persist loan: %w", err)
	}
	s.logger.Info("loan recorded", "id", l.ID, "direction", l.Direction, "principal", l.Principal)
	return l, nil
}

// Get returns one of the owner's loans.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Loan, error) {
	l, err := s.uow.Loans().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	if l.UserID != userID {
		return nil, domain.ErrLoanNotFound
	}
	return l, nil
}

// List returns all of the owner's loans.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]domain.Loan, error) {
	return s.uow.Loans().ListByOwner(ctx, owner)
}

// Entries returns all entries of one loan.
func (s *Service) Entries(ctx context.Context, userID, loanID uuid.UUID) ([]domain.LoanEntry, error) {
	if _, err := s.Get(ctx, userID, loanID); err != nil {
		return nil, err
	}
	all, err := s.uow.LoanEntries().ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := all[:0]
	for _, e := range all {
		if e.LoanID == loanID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// AddEntry is the command for recording a repayment or interest charge.
type AddEntry struct {
	UserID            uuid.UUID  `validate:"required"`
	LoanID            uuid.UUID  `validate:"required"`
	WalletID          *uuid.UUID ``
	Amount            int64      `validate:"required,gt=0"`
	Date              time.Time  ``
	Interest          bool       ``
	CreateTransaction bool       ``
}

// AddEntry decrements the loan's remaining amount by the entry amount (the
// sign convention is the same for both directions) and, when requested,
// synthesizes a linked transaction: INCOME on the wallet for money lent
// coming back, EXPENSE for borrowed money being repaid. Remaining is not
// clamped; overshoot reads as overpayment. Everything commits atomically.
func (s *Service) AddEntry(ctx context.Context, cmd AddEntry) (*domain.LoanEntry, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if cmd.CreateTransaction && cmd.WalletID == nil {
		return nil, fmt.Errorf("%w: linked transaction needs a wallet", domain.ErrValidation)
	}

	s.locks.Lock(cmd.LoanID)
	defer s.locks.Unlock(cmd.LoanID)

	date := cmd.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	now := time.Now().UTC()
	entry := &domain.LoanEntry{
		ID:          uuid.New(),
		UserID:      cmd.UserID,
		LoanID:      cmd.LoanID,
		WalletID:    cmd.WalletID,
		Amount:      cmd.Amount,
		Date:        date,
		Interest:    cmd.Interest,
		PendingSync: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		l, err := s.loanIn(ctx, uow, cmd.UserID, cmd.LoanID)
		if err != nil {
			return err
		}

		l.Remaining -= cmd.Amount
		l.PendingSync = true
		l.UpdatedAt = now
		if err := uow.Loans().Save(ctx, l); err != nil {
			return fmt.Errorf("stage loan remaining: %w", err)
		}

		if cmd.CreateTransaction {
			tx, err := s.linkTransaction(ctx, uow, l, entry)
			if err != nil {
				return err
			}
			entry.TransactionID = &tx.ID
		}

		return uow.LoanEntries().Save(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan entry recorded",
		"loan", cmd.LoanID, "entry", entry.ID, "amount", cmd.Amount, "interest", cmd.Interest)
	return entry, nil
}

// DeleteEntry reverses the entry: the loan's remaining amount is restored
// and, if a transaction was linked, its wallet effect is undone and the
// record removed.
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	probe, err := s.uow.LoanEntries().Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrLoanEntryNotFound
		}
		return err
	}
	if probe.UserID != userID {
		return domain.ErrLoanEntryNotFound
	}

	s.locks.Lock(probe.LoanID)
	defer s.locks.Unlock(probe.LoanID)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		entry, err := uow.LoanEntries().Get(ctx, entryID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrLoanEntryNotFound
			}
			return err
		}

		l, err := s.loanIn(ctx, uow, userID, entry.LoanID)
		if err != nil {
			return err
		}
		l.Remaining += entry.Amount
		l.PendingSync = true
		l.UpdatedAt = time.Now().UTC()
		if err := uow.Loans().Save(ctx, l); err != nil {
			return fmt.Errorf("stage loan remaining: %w", err)
		}

		if entry.TransactionID != nil {
			if err := s.unlinkTransaction(ctx, uow, *entry.TransactionID); err != nil {
				return err
			}
		}

		return uow.LoanEntries().Delete(ctx, entryID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("loan entry deleted", "entry", entryID)
	return nil
}

func (s *Service) loanIn(ctx context.Context, uow repository.UnitOfWork, userID, id uuid.UUID) (*domain.Loan, error) {
	l, err := uow.Loans().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	if l.UserID != userID {
		return nil, domain.ErrLoanNotFound
	}
	return l, nil
}

// linkTransaction synthesizes the movement a repayment causes and stages its
// wallet effect: money lent flowing back is income, borrowed money being
// repaid is an expense.
func (s *Service) linkTransaction(ctx context.Context, uow repository.UnitOfWork, l *domain.Loan, entry *domain.LoanEntry) (*domain.Transaction, error) {
	w, err := uow.Wallets().Get(ctx, *entry.WalletID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	if w.UserID != entry.UserID {
		return nil, domain.ErrWalletNotFound
	}

	kind := domain.KindIncome
	if l.Direction == domain.DirectionBorrowed {
		kind = domain.KindExpense
	}

	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      entry.UserID,
		WalletID:    w.ID,
		Kind:        kind,
		Amount:      entry.Amount,
		Currency:    w.Currency,
		Note:        fmt.Sprintf("loan repayment: %s", l.Counterpart),
		OccurredAt:  entry.Date,
		PendingSync: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if kind == domain.KindIncome {
		w.Balance += entry.Amount
	} else {
		w.Balance -= entry.Amount
	}
	w.PendingSync = true
	w.UpdatedAt = now
	if err := uow.Wallets().Save(ctx, w); err != nil {
		return nil, fmt.Errorf("stage wallet balance: %w", err)
	}
	if err := uow.Transactions().Save(ctx, tx); err != nil {
		return nil, fmt.Errorf("persist linked transaction: %w", err)
	}
	return tx, nil
}

// unlinkTransaction undoes the wallet effect of a linked transaction and
// deletes it. A missing record means the transaction was already removed
// through the transaction surface; nothing is left to reverse.
func (s *Service) unlinkTransaction(ctx context.Context, uow repository.UnitOfWork, txID uuid.UUID) error {
	tx, err := uow.Transactions().Get(ctx, txID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	w, err := uow.Wallets().Get(ctx, tx.WalletID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	} else {
		if tx.Kind == domain.KindIncome {
			w.Balance -= tx.Amount
		} else {
			w.Balance += tx.Amount
		}
		w.PendingSync = true
		w.UpdatedAt = time.Now().UTC()
		if err := uow.Wallets().Save(ctx, w); err != nil {
			return fmt.Errorf("stage wallet balance: %w", err)
		}
	}

	return uow.Transactions().Delete(ctx, txID)
}
