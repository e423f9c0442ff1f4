package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecurrenceKind describes how a planned payment repeats.
type RecurrenceKind string

const (
	// RecurrenceOnce fires a single time, then the payment is removed.
	RecurrenceOnce RecurrenceKind = "ONCE"
	// RecurrenceDaily repeats every Every days.
	RecurrenceDaily RecurrenceKind = "DAILY"
	// RecurrenceWeekly repeats every Every weeks.
	RecurrenceWeekly RecurrenceKind = "WEEKLY"
	// RecurrenceMonthly repeats every Every calendar months.
	RecurrenceMonthly RecurrenceKind = "MONTHLY"
	// RecurrenceYearly repeats every Every years.
	RecurrenceYearly RecurrenceKind = "YEARLY"
)

// Valid reports whether the kind is a known variant.
func (k RecurrenceKind) Valid() bool {
	switch k {
	case RecurrenceOnce, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// PlannedPayment is a future money movement. Executing it realizes a
// Transaction and either deletes the payment (one-off) or advances its due
// date by the recurrence rule. Calendar arithmetic is DST-naive.
type PlannedPayment struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	WalletID     uuid.UUID       `gorm:"type:uuid" json:"wallet_id"`
	DestWalletID *uuid.UUID      `gorm:"type:uuid" json:"dest_wallet_id,omitempty"`
	Title        string          `gorm:"size:100" json:"title"`
	Kind         TransactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	Amount       int64           `gorm:"not null" json:"amount"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Recurrence   RecurrenceKind  `gorm:"type:varchar(10);not null;default:'ONCE'" json:"recurrence"`
	Every        int             `json:"every"`
	DueDate      time.Time       `gorm:"index" json:"due_date"`
	PendingSync  bool            `gorm:"index" json:"pending_sync"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the PlannedPayment model.
func (PlannedPayment) TableName() string { return "planned_payments" }

// IsDue reports whether the payment is due at the given instant.
func (p PlannedPayment) IsDue(now time.Time) bool {
	return !now.Before(p.DueDate)
}

// NextDue returns the due date advanced once by the recurrence rule.
// RecurrenceOnce has no next occurrence and returns the due date unchanged.
// Month and year steps clamp to the last day of the target month, so a
// payment scheduled on the 31st stays at month end instead of drifting
// forward a few days every cycle.
func (p PlannedPayment) NextDue() time.Time {
	every := p.Every
	if every < 1 {
		every = 1
	}
	switch p.Recurrence {
	case RecurrenceDaily:
		return p.DueDate.AddDate(0, 0, every)
	case RecurrenceWeekly:
		return p.DueDate.AddDate(0, 0, 7*every)
	case RecurrenceMonthly:
		return addMonthsClamped(p.DueDate, every)
	case RecurrenceYearly:
		return addMonthsClamped(p.DueDate, 12*every)
	}
	return p.DueDate
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// EntityID implements Syncable.
func (p PlannedPayment) EntityID() uuid.UUID { return p.ID }

// Owner implements Syncable.
func (p PlannedPayment) Owner() uuid.UUID { return p.UserID }

// IsPending implements Syncable.
func (p PlannedPayment) IsPending() bool { return p.PendingSync }

// ModifiedAt implements Syncable.
func (p PlannedPayment) ModifiedAt() time.Time { return p.UpdatedAt }

// WithSynced implements Syncable.
func (p PlannedPayment) WithSynced(synced bool) PlannedPayment {
	p.PendingSync = !synced
	return p
}
