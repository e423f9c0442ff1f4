package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind classifies a money movement.
type TransactionKind string

const (
	// KindIncome credits the source wallet.
	KindIncome TransactionKind = "INCOME"
	// KindExpense debits the source wallet.
	KindExpense TransactionKind = "EXPENSE"
	// KindTransfer moves money between two wallets, converting across
	// currencies when they differ.
	KindTransfer TransactionKind = "TRANSFER"
)

// Valid reports whether the kind is one of the known variants.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Transaction represents a single money movement. Amount is always positive
// in minor units; the kind determines the sign of the wallet effect.
//
// For cross-currency transfers the converted amount and the rate used are
// captured at creation time so a later reversal undoes the original credit
// exactly, regardless of rate drift.
type Transaction struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	WalletID     uuid.UUID       `gorm:"type:uuid;index" json:"wallet_id"`
	DestWalletID *uuid.UUID      `gorm:"type:uuid" json:"dest_wallet_id,omitempty"`
	Kind         TransactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	Amount       int64           `gorm:"not null" json:"amount"`
	Currency     string          `gorm:"type:varchar(3);not null" json:"currency"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Note         string          `gorm:"size:255" json:"note,omitempty"`
	OccurredAt   time.Time       `gorm:"index" json:"occurred_at"`

	// Conversion fields, set iff Kind == KindTransfer and the wallets
	// disagree on currency.
	ConvertedAmount *int64   `json:"converted_amount,omitempty"`
	ConversionRate  *float64 `gorm:"type:decimal(20,8)" json:"conversion_rate,omitempty"`

	PendingSync bool      `gorm:"index" json:"pending_sync"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }

// IsCrossCurrency reports whether the transfer credited a different currency
// than it debited.
func (t Transaction) IsCrossCurrency() bool {
	return t.Kind == KindTransfer && t.ConvertedAmount != nil
}

// DestinationAmount returns the amount credited to the destination wallet of
// a transfer: the converted amount when a conversion happened, the plain
// amount otherwise.
func (t Transaction) DestinationAmount() int64 {
	if t.ConvertedAmount != nil {
		return *t.ConvertedAmount
	}
	return t.Amount
}

// EntityID implements Syncable.
func (t Transaction) EntityID() uuid.UUID { return t.ID }

// Owner implements Syncable.
func (t Transaction) Owner() uuid.UUID { return t.UserID }

// IsPending implements Syncable.
func (t Transaction) IsPending() bool { return t.PendingSync }

// ModifiedAt implements Syncable.
func (t Transaction) ModifiedAt() time.Time { return t.UpdatedAt }

// WithSynced implements Syncable.
func (t Transaction) WithSynced(synced bool) Transaction {
	t.PendingSync = !synced
	return t
}
