// Package ledger implements the balance-consistency mutator: every mutation
// that creates, reverses, or edits a money movement also adjusts the wallet
// balances it affects, staged and committed in one unit of work. Mutations
// persist locally with PendingSync set; the sync engine moves them remotely
// later.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/exchange"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"github.com/pocketledger/pocketledger/pkg/utils"
)

// Service is the ledger mutator for transactions.
type Service struct {
	uow      repository.UnitOfWork
	rates    *exchange.Cache
	logger   *slog.Logger
	validate *validator.Validate
	wallets  *utils.KeyedMutex[uuid.UUID]
}

// New creates a ledger service.
func New(uow repository.UnitOfWork, rates *exchange.Cache, logger *slog.Logger) *Service {
	return &Service{
		uow:      uow,
		rates:    rates,
		logger:   logger,
		validate: validator.New(),
		wallets:  utils.NewKeyedMutex[uuid.UUID](),
	}
}

// CreateTransaction is the command for recording a movement.
type CreateTransaction struct {
	UserID       uuid.UUID              `validate:"required"`
	WalletID     uuid.UUID              `validate:"required"`
	DestWalletID *uuid.UUID             ``
	Kind         domain.TransactionKind `validate:"required"`
	Amount       int64                  `validate:"required,gt=0"`
	CategoryID   *uuid.UUID             ``
	Note         string                 `validate:"max=255"`
	OccurredAt   time.Time              ``
}

func (s *Service) checkCreate(cmd CreateTransaction) error {
	if cmd.Amount <= 0 {
		return domain.ErrAmountNotPositive
	}
	if err := s.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !cmd.Kind.Valid() {
		return domain.ErrInvalidTransactionKind
	}
	if cmd.Kind == domain.KindTransfer {
		if cmd.DestWalletID == nil {
			return domain.ErrDestinationRequired
		}
		if *cmd.DestWalletID == cmd.WalletID {
			return domain.ErrSameWallet
		}
	}
	return nil
}

// Create validates the command, adjusts the affected wallet balances and
// persists the movement record, all marked pending, in one atomic unit of
// work. Cross-currency transfers capture the conversion rate and converted
// amount at creation time so reversal restores both wallets exactly.
func (s *Service) Create(ctx context.Context, cmd CreateTransaction) (*domain.Transaction, error) {
	if err := s.checkCreate(cmd); err != nil {
		return nil, err
	}

	unlock := s.lockWallets(cmd.WalletID, cmd.DestWalletID)
	defer unlock()

	var tx *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var err error
		tx, err = s.stageCreate(ctx, uow, cmd)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		"id", tx.ID, "kind", tx.Kind, "amount", tx.Amount, "wallet", tx.WalletID)
	return tx, nil
}

// CreateIn stages the movement inside the caller's open unit of work, so a
// caller can commit it atomically with writes of its own (planned payment
// execution does). The caller owns the commit; nothing is durable until its
// unit of work succeeds.
func (s *Service) CreateIn(ctx context.Context, uow repository.UnitOfWork, cmd CreateTransaction) (*domain.Transaction, error) {
	if err := s.checkCreate(cmd); err != nil {
		return nil, err
	}

	unlock := s.lockWallets(cmd.WalletID, cmd.DestWalletID)
	defer unlock()

	return s.stageCreate(ctx, uow, cmd)
}

func (s *Service) stageCreate(ctx context.Context, uow repository.UnitOfWork, cmd CreateTransaction) (*domain.Transaction, error) {
	occurred := cmd.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	now := time.Now().UTC()
	tx := &domain.Transaction{
		ID:           uuid.New(),
		UserID:       cmd.UserID,
		WalletID:     cmd.WalletID,
		DestWalletID: cmd.DestWalletID,
		Kind:         cmd.Kind,
		Amount:       cmd.Amount,
		CategoryID:   cmd.CategoryID,
		Note:         cmd.Note,
		OccurredAt:   occurred,
		PendingSync:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	src, err := s.wallet(ctx, uow, cmd.UserID, cmd.WalletID)
	if err != nil {
		return nil, err
	}
	tx.Currency = src.Currency

	if cmd.Kind == domain.KindTransfer {
		dst, err := s.wallet(ctx, uow, cmd.UserID, *cmd.DestWalletID)
		if err != nil {
			return nil, err
		}
		if dst.Currency != src.Currency {
			converted, rate, err := s.rates.Convert(cmd.Amount, src.Currency, dst.Currency)
			if err != nil {
				return nil, err
			}
			tx.ConvertedAmount = &converted
			tx.ConversionRate = &rate
		}
	}

	// Balance writes are staged before the movement record so a failed
	// record write aborts the whole unit instead of leaving an orphaned,
	// unexplainable transaction.
	if err := s.applyEffect(ctx, uow, tx, false); err != nil {
		return nil, err
	}
	if err := uow.Transactions().Save(ctx, tx); err != nil {
		s.logger.Error("movement record write failed after balance staging",
			"transaction", tx.ID, "error", errors.Join(domain.ErrPartialApplication, err))
		return nil, fmt.Errorf("persist transaction: %w", err)
	}
	return tx, nil
}

// Delete reverses the movement's wallet effect with the amount and conversion
// captured at creation, then removes the record.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}

	unlock := s.lockWallets(tx.WalletID, tx.DestWalletID)
	defer unlock()

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		// Re-read inside the transaction boundary; the record may have been
		// deleted or replaced since the unlocked read.
		current, err := uow.Transactions().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}
		if err := s.applyEffect(ctx, uow, current, true); err != nil {
			return err
		}
		return uow.Transactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("transaction deleted", "id", id)
	return nil
}

// Update replays the movement: the old effect is reversed with its stored
// conversion, then the new command is applied as a fresh movement under the
// same id. A direct diff would compound conversion rounding across repeated
// edits.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, cmd CreateTransaction) (*domain.Transaction, error) {
	if err := s.checkCreate(cmd); err != nil {
		return nil, err
	}
	old, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	unlock := s.lockWallets(old.WalletID, old.DestWalletID, cmd.WalletID, cmd.DestWalletID)
	defer unlock()

	updated := &domain.Transaction{
		ID:           id,
		UserID:       userID,
		WalletID:     cmd.WalletID,
		DestWalletID: cmd.DestWalletID,
		Kind:         cmd.Kind,
		Amount:       cmd.Amount,
		CategoryID:   cmd.CategoryID,
		Note:         cmd.Note,
		OccurredAt:   cmd.OccurredAt,
		PendingSync:  true,
		CreatedAt:    old.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	}
	if updated.OccurredAt.IsZero() {
		updated.OccurredAt = old.OccurredAt
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		current, err := uow.Transactions().Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return domain.ErrTransactionNotFound
			}
			return err
		}
		if err := s.applyEffect(ctx, uow, current, true); err != nil {
			return err
		}

		src, err := s.wallet(ctx, uow, userID, updated.WalletID)
		if err != nil {
			return err
		}
		updated.Currency = src.Currency
		updated.ConvertedAmount = nil
		updated.ConversionRate = nil
		if updated.Kind == domain.KindTransfer {
			dst, err := s.wallet(ctx, uow, userID, *updated.DestWalletID)
			if err != nil {
				return err
			}
			if dst.Currency != src.Currency {
				converted, rate, err := s.rates.Convert(updated.Amount, src.Currency, dst.Currency)
				if err != nil {
					return err
				}
				updated.ConvertedAmount = &converted
				updated.ConversionRate = &rate
			}
		}

		if err := s.applyEffect(ctx, uow, updated, false); err != nil {
			return err
		}
		return uow.Transactions().Save(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction updated", "id", id)
	return updated, nil
}

// ListByOwner returns all of the owner's transactions.
func (s *Service) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Transaction, error) {
	return s.uow.Transactions().ListByOwner(ctx, owner)
}

// Get returns one of the owner's transactions.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.get(ctx, userID, id)
}

func (s *Service) get(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.uow.Transactions().Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

// applyEffect stages the wallet balance changes of a movement. With
// reverse=true every sign is flipped, using the amount and converted amount
// stored on the record, so delete/undo restores balances exactly.
func (s *Service) applyEffect(ctx context.Context, uow repository.UnitOfWork, tx *domain.Transaction, reverse bool) error {
	sign := int64(1)
	if reverse {
		sign = -1
	}

	src, err := s.wallet(ctx, uow, tx.UserID, tx.WalletID)
	if err != nil {
		return err
	}

	switch tx.Kind {
	case domain.KindIncome:
		src.Balance += sign * tx.Amount
	case domain.KindExpense:
		src.Balance -= sign * tx.Amount
	case domain.KindTransfer:
		if tx.DestWalletID == nil {
			return domain.ErrDestinationRequired
		}
		src.Balance -= sign * tx.Amount

		dst, err := s.wallet(ctx, uow, tx.UserID, *tx.DestWalletID)
		if err != nil {
			return err
		}
		dst.Balance += sign * tx.DestinationAmount()
		dst.PendingSync = true
		dst.UpdatedAt = time.Now().UTC()
		if err := uow.Wallets().Save(ctx, dst); err != nil {
			return fmt.Errorf("stage destination balance: %w", err)
		}
	default:
		return domain.ErrInvalidTransactionKind
	}

	src.PendingSync = true
	src.UpdatedAt = time.Now().UTC()
	if err := uow.Wallets().Save(ctx, src); err != nil {
		return fmt.Errorf("stage source balance: %w", err)
	}
	return nil
}

func (s *Service) wallet(ctx context.Context, uow repository.UnitOfWork, userID, id uuid.UUID) (*domain.Wallet, error) {
	w, err := uow.Wallets().Get(ctx, id)
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

// lockWallets serializes the mutation per wallet id. Ids are acquired in a
// stable order so two concurrent transfers touching the same pair cannot
// deadlock.
func (s *Service) lockWallets(ids ...any) func() {
	seen := make(map[uuid.UUID]bool)
	var keys []uuid.UUID
	for _, raw := range ids {
		switch v := raw.(type) {
		case uuid.UUID:
			if v != uuid.Nil && !seen[v] {
				seen[v] = true
				keys = append(keys, v)
			}
		case *uuid.UUID:
			if v != nil && *v != uuid.Nil && !seen[*v] {
				seen[*v] = true
				keys = append(keys, *v)
			}
		}
	}
	sortUUIDs(keys)
	for _, k := range keys {
		s.wallets.Lock(k)
	}
	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			s.wallets.Unlock(keys[i])
		}
	}
}

func sortUUIDs(ids []uuid.UUID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && strings.Compare(ids[j].String(), ids[j-1].String()) < 0; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
