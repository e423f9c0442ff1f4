package domain

import (
	"time"

	"github.com/google/uuid"
)

// The catalog entities are simple owned records. They follow the generic sync
// contract but have no derived-balance coupling.

// Category labels transactions for reporting.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Icon        string    `gorm:"size:50" json:"icon,omitempty"`
	PendingSync bool      `gorm:"index" json:"pending_sync"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Category model.
func (Category) TableName() string { return "categories" }

// EntityID implements Syncable.
func (c Category) EntityID() uuid.UUID { return c.ID }

// Owner implements Syncable.
func (c Category) Owner() uuid.UUID { return c.UserID }

// IsPending implements Syncable.
func (c Category) IsPending() bool { return c.PendingSync }

// ModifiedAt implements Syncable.
func (c Category) ModifiedAt() time.Time { return c.UpdatedAt }

// WithSynced implements Syncable.
func (c Category) WithSynced(synced bool) Category {
	c.PendingSync = !synced
	return c
}

// Goal is a savings target in a single currency.
type Goal struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	TargetAmount int64      `gorm:"not null" json:"target_amount"`
	SavedAmount  int64      `json:"saved_amount"`
	Currency     string     `gorm:"type:varchar(3);not null" json:"currency"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	PendingSync  bool       `gorm:"index" json:"pending_sync"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Goal model.
func (Goal) TableName() string { return "goals" }

// EntityID implements Syncable.
func (g Goal) EntityID() uuid.UUID { return g.ID }

// Owner implements Syncable.
func (g Goal) Owner() uuid.UUID { return g.UserID }

// IsPending implements Syncable.
func (g Goal) IsPending() bool { return g.PendingSync }

// ModifiedAt implements Syncable.
func (g Goal) ModifiedAt() time.Time { return g.UpdatedAt }

// WithSynced implements Syncable.
func (g Goal) WithSynced(synced bool) Goal {
	g.PendingSync = !synced
	return g
}

// Portfolio groups investment holdings.
type Portfolio struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	PendingSync bool      `gorm:"index" json:"pending_sync"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Portfolio model.
func (Portfolio) TableName() string { return "portfolios" }

// EntityID implements Syncable.
func (p Portfolio) EntityID() uuid.UUID { return p.ID }

// Owner implements Syncable.
func (p Portfolio) Owner() uuid.UUID { return p.UserID }

// IsPending implements Syncable.
func (p Portfolio) IsPending() bool { return p.PendingSync }

// ModifiedAt implements Syncable.
func (p Portfolio) ModifiedAt() time.Time { return p.UpdatedAt }

// WithSynced implements Syncable.
func (p Portfolio) WithSynced(synced bool) Portfolio {
	p.PendingSync = !synced
	return p
}

// PortfolioInstrument is a single holding inside a portfolio. Purchase price
// is in minor units of its currency; quantity may be fractional.
type PortfolioInstrument struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	PortfolioID   uuid.UUID `gorm:"type:uuid;index" json:"portfolio_id"`
	Symbol        string    `gorm:"size:20;not null" json:"symbol"`
	Quantity      float64   `gorm:"type:decimal(20,8)" json:"quantity"`
	PurchasePrice int64     `json:"purchase_price"`
	Currency      string    `gorm:"type:varchar(3);not null" json:"currency"`
	PendingSync   bool      `gorm:"index" json:"pending_sync"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for the PortfolioInstrument model.
func (PortfolioInstrument) TableName() string { return "portfolio_instruments" }

// EntityID implements Syncable.
func (i PortfolioInstrument) EntityID() uuid.UUID { return i.ID }

// Owner implements Syncable.
func (i PortfolioInstrument) Owner() uuid.UUID { return i.UserID }

// IsPending implements Syncable.
func (i PortfolioInstrument) IsPending() bool { return i.PendingSync }

// ModifiedAt implements Syncable.
func (i PortfolioInstrument) ModifiedAt() time.Time { return i.UpdatedAt }

// WithSynced implements Syncable.
func (i PortfolioInstrument) WithSynced(synced bool) PortfolioInstrument {
	i.PendingSync = !synced
	return i
}
