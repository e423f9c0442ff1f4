// Package infra provides the concrete adapters behind the core contracts:
// the on-device database, the remote ledger client, the connectivity prober
// and the exchange rate source.
package infra

import (
	"fmt"

	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDBConnection opens the on-device SQLite database and migrates the ledger
// tables.
func NewDBConnection(cnf config.DB, appEnv string) (*gorm.DB, error) {
	if cnf.Path == "" {
		return nil, fmt.Errorf("database path is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(cnf.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Wallet{},
		&domain.Transaction{},
		&domain.Loan{},
		&domain.LoanEntry{},
		&domain.PlannedPayment{},
		&domain.Category{},
		&domain.Goal{},
		&domain.Portfolio{},
		&domain.PortfolioInstrument{},
	)
}
