// Package testutils holds shared helpers for tests: an in-memory ledger
// database and a quiet logger.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pocketledger/pocketledger/infra"
	infrarepository "github.com/pocketledger/pocketledger/infra/repository"
	"github.com/pocketledger/pocketledger/pkg/domain"
)

// NewTestDB opens a fresh in-memory SQLite database with all ledger tables
// migrated. Each call returns an isolated database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	return db
}

// NewTestUoW wraps NewTestDB in a unit of work.
func NewTestUoW(t *testing.T) *infrarepository.UoW {
	t.Helper()
	return infrarepository.NewUoW(NewTestDB(t))
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedWallet inserts a wallet with the given balance, already synced.
func SeedWallet(t *testing.T, uow *infrarepository.UoW, owner uuid.UUID, currencyCode string, balance int64) *domain.Wallet {
	t.Helper()
	w, err := domain.NewWallet(owner, "wallet-"+currencyCode, currencyCode)
	require.NoError(t, err)
	w.Balance = balance
	w.PendingSync = false
	require.NoError(t, uow.Wallets().Save(context.Background(), w))
	return w
}
