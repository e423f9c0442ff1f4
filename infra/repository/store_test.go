package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrarepository "github.com/pocketledger/pocketledger/infra/repository"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"github.com/pocketledger/pocketledger/pkg/testutils"
)

func TestStoreRoundTrip(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)
	owner := uuid.New()

	w, err := domain.NewWallet(owner, "cash", "USD")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), w))

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, "cash", got.Name)
	assert.True(t, got.PendingSync)
}

func TestStoreGetMissingReturnsNotFound(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreSaveIsUpsert(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)
	owner := uuid.New()

	w, err := domain.NewWallet(owner, "cash", "USD")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), w))

	w.Name = "renamed"
	w.Balance = 500
	require.NoError(t, store.Save(context.Background(), w))

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, int64(500), got.Balance)

	all, err := store.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStorePendingQueries(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)
	owner := uuid.New()

	first, err := domain.NewWallet(owner, "one", "USD")
	require.NoError(t, err)
	second, err := domain.NewWallet(owner, "two", "USD")
	require.NoError(t, err)
	synced := second.WithSynced(true)

	require.NoError(t, store.Save(context.Background(), first))
	require.NoError(t, store.Save(context.Background(), &synced))

	pending, err := store.ListPending(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	count, err := store.CountPending(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.MarkSynced(context.Background(), []uuid.UUID{first.ID}))
	count, err = store.CountPending(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStoreDeleteMissingIsNoError(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)

	assert.NoError(t, store.Delete(context.Background(), uuid.New()))
}

func TestStoreScopesByOwner(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := infrarepository.NewStore[domain.Wallet](db)

	mine, err := domain.NewWallet(uuid.New(), "mine", "USD")
	require.NoError(t, err)
	theirs, err := domain.NewWallet(uuid.New(), "theirs", "USD")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), mine))
	require.NoError(t, store.Save(context.Background(), theirs))

	got, err := store.ListByOwner(context.Background(), mine.UserID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

func TestUoWRollsBackOnError(t *testing.T) {
	uow := infrarepository.NewUoW(testutils.NewTestDB(t))
	owner := uuid.New()

	w, err := domain.NewWallet(owner, "cash", "USD")
	require.NoError(t, err)

	boom := assert.AnError
	err = uow.Do(context.Background(), func(tx repository.UnitOfWork) error {
		if err := tx.Wallets().Save(context.Background(), w); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = uow.Wallets().Get(context.Background(), w.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUoWCommitsOnSuccess(t *testing.T) {
	uow := infrarepository.NewUoW(testutils.NewTestDB(t))
	owner := uuid.New()

	w, err := domain.NewWallet(owner, "cash", "USD")
	require.NoError(t, err)
	tx, err := domain.NewLoan(owner, "alex", 100, domain.DirectionLent, "USD")
	require.NoError(t, err)

	err = uow.Do(context.Background(), func(u repository.UnitOfWork) error {
		if err := u.Wallets().Save(context.Background(), w); err != nil {
			return err
		}
		return u.Loans().Save(context.Background(), tx)
	})
	require.NoError(t, err)

	_, err = uow.Wallets().Get(context.Background(), w.ID)
	assert.NoError(t, err)
	_, err = uow.Loans().Get(context.Background(), tx.ID)
	assert.NoError(t, err)
}
