package domain

import (
	"time"

	"github.com/google/uuid"
)

// LoanDirection distinguishes money the user lent from money they borrowed.
type LoanDirection string

const (
	// DirectionLent means the user gave money and repayments flow back in.
	DirectionLent LoanDirection = "LENT"
	// DirectionBorrowed means the user took money and repayments flow out.
	DirectionBorrowed LoanDirection = "BORROWED"
)

// Valid reports whether the direction is a known variant.
func (d LoanDirection) Valid() bool {
	return d == DirectionLent || d == DirectionBorrowed
}

// Loan tracks an amount lent or borrowed. Principal is fixed at creation;
// Remaining is mutated only by loan entry application and reversal. Entries
// may legally overshoot (overpayment): Remaining is not clamped to
// [0, Principal], consumers interpret a negative value as overpayment.
type Loan struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	Counterpart string        `gorm:"size:100" json:"counterpart"`
	Principal   int64         `gorm:"not null" json:"principal"`
	Remaining   int64         `gorm:"not null" json:"remaining"`
	Direction   LoanDirection `gorm:"type:varchar(10);not null" json:"direction"`
	Currency    string        `gorm:"type:varchar(3);not null" json:"currency"`
	PendingSync bool          `gorm:"index" json:"pending_sync"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TableName specifies the table name for the Loan model.
func (Loan) TableName() string { return "loans" }

// NewLoan creates a loan with Remaining equal to Principal, marked pending.
func NewLoan(userID uuid.UUID, counterpart string, principal int64, direction LoanDirection, currencyCode string) (*Loan, error) {
	if principal <= 0 {
		return nil, ErrAmountNotPositive
	}
	if !direction.Valid() {
		return nil, ErrInvalidLoanDirection
	}
	now := time.Now().UTC()
	return &Loan{
		ID:          uuid.New(),
		UserID:      userID,
		Counterpart: counterpart,
		Principal:   principal,
		Remaining:   principal,
		Direction:   direction,
		Currency:    currencyCode,
		PendingSync: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// EntityID implements Syncable.
func (l Loan) EntityID() uuid.UUID { return l.ID }

// Owner implements Syncable.
func (l Loan) Owner() uuid.UUID { return l.UserID }

// IsPending implements Syncable.
func (l Loan) IsPending() bool { return l.PendingSync }

// ModifiedAt implements Syncable.
func (l Loan) ModifiedAt() time.Time { return l.UpdatedAt }

// WithSynced implements Syncable.
func (l Loan) WithSynced(synced bool) Loan {
	l.PendingSync = !synced
	return l
}

// LoanEntry records a single repayment (or interest charge) against a loan.
// When the repayment moved real money it links the transaction it created,
// so deleting the entry can reverse the wallet effect too.
type LoanEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	LoanID        uuid.UUID  `gorm:"type:uuid;index" json:"loan_id"`
	TransactionID *uuid.UUID `gorm:"type:uuid" json:"transaction_id,omitempty"`
	WalletID      *uuid.UUID `gorm:"type:uuid" json:"wallet_id,omitempty"`
	Amount        int64      `gorm:"not null" json:"amount"`
	Date          time.Time  `json:"date"`
	Interest      bool       `json:"interest"`
	PendingSync   bool       `gorm:"index" json:"pending_sync"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the LoanEntry model.
func (LoanEntry) TableName() string { return "loan_entries" }

// EntityID implements Syncable.
func (e LoanEntry) EntityID() uuid.UUID { return e.ID }

// Owner implements Syncable.
func (e LoanEntry) Owner() uuid.UUID { return e.UserID }

// IsPending implements Syncable.
func (e LoanEntry) IsPending() bool { return e.PendingSync }

// ModifiedAt implements Syncable.
func (e LoanEntry) ModifiedAt() time.Time { return e.UpdatedAt }

// WithSynced implements Syncable.
func (e LoanEntry) WithSynced(synced bool) LoanEntry {
	e.PendingSync = !synced
	return e
}
