package loan

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrarepository "github.com/pocketledger/pocketledger/infra/repository"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/testutils"
)

func newTestService(t *testing.T) (*Service, *infrarepository.UoW) {
	t.Helper()
	uow := testutils.NewTestUoW(t)
	return New(uow, testutils.NewTestLogger()), uow
}

func seedLoan(t *testing.T, svc *Service, owner uuid.UUID, direction domain.LoanDirection, principal int64) *domain.Loan {
	t.Helper()
	l, err := svc.Create(context.Background(), CreateLoan{
		UserID:      owner,
		Counterpart: "alex",
		Principal:   principal,
		Direction:   direction,
		Currency:    "USD",
	})
	require.NoError(t, err)
	return l
}

func TestCreateLoanStartsWithFullRemaining(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()

	l := seedLoan(t, svc, owner, domain.DirectionLent, 50_000)
	assert.Equal(t, int64(50_000), l.Remaining)
	assert.True(t, l.PendingSync)
}

func TestAddEntryDecrementsRemaining(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l := seedLoan(t, svc, owner, domain.DirectionLent, 50_000)

	entry, err := svc.AddEntry(context.Background(), AddEntry{
		UserID: owner,
		LoanID: l.ID,
		Amount: 20_000,
	})
	require.NoError(t, err)
	assert.Nil(t, entry.TransactionID)

	got, err := svc.Get(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30_000), got.Remaining)
}

func TestAddEntryOvershootIsOverpayment(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l := seedLoan(t, svc, owner, domain.DirectionBorrowed, 10_000)

	_, err := svc.AddEntry(context.Background(), AddEntry{
		UserID: owner,
		LoanID: l.ID,
		Amount: 12_000,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-2_000), got.Remaining, "remaining is not clamped at zero")
}

func TestAddEntryWithLinkedTransactionOnLentLoan(t *testing.T) {
	svc, uow := newTestService(t)
	owner := uuid.New()
	w := testutils.SeedWallet(t, uow, owner, "USD", 1_000)
	l := seedLoan(t, svc, owner, domain.DirectionLent, 50_000)

	entry, err := svc.AddEntry(context.Background(), AddEntry{
		UserID:            owner,
		LoanID:            l.ID,
		WalletID:          &w.ID,
		Amount:            20_000,
		CreateTransaction: true,
	})
	require.NoError(t, err)
	require.NotNil(t, entry.TransactionID)

	tx, err := uow.Transactions().Get(context.Background(), *entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindIncome, tx.Kind, "lent money coming back is income")

	gotWallet, err := uow.Wallets().Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(21_000), gotWallet.Balance)
}

func TestAddEntryWithLinkedTransactionOnBorrowedLoan(t *testing.T) {
	svc, uow := newTestService(t)
	owner := uuid.New()
	w := testutils.SeedWallet(t, uow, owner, "USD", 30_000)
	l := seedLoan(t, svc, owner, domain.DirectionBorrowed, 50_000)

	entry, err := svc.AddEntry(context.Background(), AddEntry{
		UserID:            owner,
		LoanID:            l.ID,
		WalletID:          &w.ID,
		Amount:            20_000,
		CreateTransaction: true,
	})
	require.NoError(t, err)

	tx, err := uow.Transactions().Get(context.Background(), *entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.KindExpense, tx.Kind, "repaying borrowed money is an expense")

	gotWallet, err := uow.Wallets().Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), gotWallet.Balance)
}

func TestAddEntryRequiresWalletForLinkedTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	l := seedLoan(t, svc, owner, domain.DirectionLent, 1_000)

	_, err := svc.AddEntry(context.Background(), AddEntry{
		UserID:            owner,
		LoanID:            l.ID,
		Amount:            100,
		CreateTransaction: true,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteEntryReversesEverything(t *testing.T) {
	svc, uow := newTestService(t)
	owner := uuid.New()
	w := testutils.SeedWallet(t, uow, owner, "USD", 1_000)
	l := seedLoan(t, svc, owner, domain.DirectionLent, 50_000)

	entry, err := svc.AddEntry(context.Background(), AddEntry{
		UserID:            owner,
		LoanID:            l.ID,
		WalletID:          &w.ID,
		Amount:            20_000,
		CreateTransaction: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(context.Background(), owner, entry.ID))

	gotLoan, err := svc.Get(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), gotLoan.Remaining)

	gotWallet, err := uow.Wallets().Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), gotWallet.Balance)

	_, err = uow.Transactions().Get(context.Background(), *entry.TransactionID)
	assert.Error(t, err, "linked transaction must be removed")
}

func TestDeleteEntryToleratesAlreadyDeletedTransaction(t *testing.T) {
	svc, uow := newTestService(t)
	owner := uuid.New()
	w := testutils.SeedWallet(t, uow, owner, "USD", 1_000)
	l := seedLoan(t, svc, owner, domain.DirectionLent, 50_000)

	entry, err := svc.AddEntry(context.Background(), AddEntry{
		UserID:            owner,
		LoanID:            l.ID,
		WalletID:          &w.ID,
		Amount:            500,
		CreateTransaction: true,
	})
	require.NoError(t, err)

	// The linked transaction was removed through the transaction surface.
	require.NoError(t, uow.Transactions().Delete(context.Background(), *entry.TransactionID))

	require.NoError(t, svc.DeleteEntry(context.Background(), owner, entry.ID))

	gotLoan, err := svc.Get(context.Background(), owner, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), gotLoan.Remaining)
}

func TestEntriesFiltersByLoan(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	first := seedLoan(t, svc, owner, domain.DirectionLent, 10_000)
	second := seedLoan(t, svc, owner, domain.DirectionLent, 10_000)

	_, err := svc.AddEntry(context.Background(), AddEntry{UserID: owner, LoanID: first.ID, Amount: 100})
	require.NoError(t, err)
	_, err = svc.AddEntry(context.Background(), AddEntry{UserID: owner, LoanID: second.ID, Amount: 200})
	require.NoError(t, err)

	entries, err := svc.Entries(context.Background(), owner, first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(100), entries[0].Amount)
}

func TestForeignLoanIsInvisible(t *testing.T) {
	svc, _ := newTestService(t)
	owner := uuid.New()
	stranger := uuid.New()
	l := seedLoan(t, svc, owner, domain.DirectionLent, 10_000)

	_, err := svc.Get(context.Background(), stranger, l.ID)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)

	_, err = svc.AddEntry(context.Background(), AddEntry{UserID: stranger, LoanID: l.ID, Amount: 100})
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}
