package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/currency"
)

// Wallet represents a user's money container. Balance is a derived
// accumulator in minor units: it always equals the net of all transaction
// movements applied to it since creation.
type Wallet struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Currency        string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Balance         int64     `json:"balance"`
	// No column default: a default would make the upsert drop the zero
	// value false and exclusion could never be written back.
	IncludedInTotal bool      `json:"included_in_total"`
	Archived        bool      `json:"archived"`
	PendingSync     bool      `gorm:"index" json:"pending_sync"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Wallet model.
func (Wallet) TableName() string { return "wallets" }

// NewWallet creates a wallet with a zero balance, marked pending.
func NewWallet(userID uuid.UUID, name, currencyCode string) (*Wallet, error) {
	if currencyCode == "" {
		currencyCode = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(currencyCode) {
		return nil, currency.ErrInvalidCurrencyCode
	}
	now := time.Now().UTC()
	return &Wallet{
		ID:              uuid.New(),
		UserID:          userID,
		Name:            name,
		Currency:        currencyCode,
		Balance:         0,
		IncludedInTotal: true,
		PendingSync:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// EntityID implements Syncable.
func (w Wallet) EntityID() uuid.UUID { return w.ID }

// Owner implements Syncable.
func (w Wallet) Owner() uuid.UUID { return w.UserID }

// IsPending implements Syncable.
func (w Wallet) IsPending() bool { return w.PendingSync }

// ModifiedAt implements Syncable.
func (w Wallet) ModifiedAt() time.Time { return w.UpdatedAt }

// WithSynced implements Syncable.
func (w Wallet) WithSynced(synced bool) Wallet {
	w.PendingSync = !synced
	return w
}
