package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/pkg/connectivity"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/remote"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"github.com/pocketledger/pocketledger/pkg/testutils"
)

// memStore is an in-memory repository.Store for engine tests.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]domain.Wallet
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]domain.Wallet)}
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (s *memStore) Save(_ context.Context, w *domain.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[w.ID] = *w
	return nil
}

func (s *memStore) Put(ctx context.Context, w *domain.Wallet) error {
	return s.Save(ctx, w)
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *memStore) ListByOwner(_ context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Wallet
	for _, w := range s.records {
		if w.UserID == owner {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) ListPending(_ context.Context, owner uuid.UUID) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Wallet
	for _, w := range s.records {
		if w.UserID == owner && w.PendingSync {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) MarkSynced(_ context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if w, ok := s.records[id]; ok {
			w.PendingSync = false
			s.records[id] = w
		}
	}
	return nil
}

func (s *memStore) CountPending(ctx context.Context, owner uuid.UUID) (int64, error) {
	pending, err := s.ListPending(ctx, owner)
	return int64(len(pending)), err
}

// fakeRemote records calls and serves a configurable remote set.
type fakeRemote struct {
	mu          sync.Mutex
	upserted    [][]domain.Wallet
	upsertErr   error
	onUpsert    func(records []domain.Wallet)
	remoteSet   []domain.Wallet
	selectErr   error
	selectCalls int
	deleted     []uuid.UUID
}

func (r *fakeRemote) Upsert(_ context.Context, records []domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, records)
	if r.onUpsert != nil {
		r.onUpsert(records)
	}
	return nil
}

func (r *fakeRemote) SelectByOwner(_ context.Context, _ uuid.UUID) ([]domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selectCalls++
	if r.selectErr != nil {
		return nil, r.selectErr
	}
	return r.remoteSet, nil
}

func (r *fakeRemote) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

func newTestEngine(conn connectivity.Monitor, store *memStore, rem *fakeRemote) *Engine[domain.Wallet] {
	return NewEngine[domain.Wallet]("wallets", store, rem, conn, testutils.NewTestLogger(), 0)
}

func pendingWallet(t *testing.T, owner uuid.UUID) *domain.Wallet {
	t.Helper()
	w, err := domain.NewWallet(owner, "cash", "USD")
	require.NoError(t, err)
	return w
}

func TestPushKeepsMidFlightEditPending(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	w.Balance = 100
	require.NoError(t, store.Save(context.Background(), w))

	// An edit lands after the batch was read but before the flag is cleared.
	rem.onUpsert = func(_ []domain.Wallet) {
		edited := *w
		edited.Balance = 200
		edited.PendingSync = true
		edited.UpdatedAt = edited.UpdatedAt.Add(time.Second)
		require.NoError(t, store.Save(context.Background(), &edited))
	}

	pushed, err := engine.Push(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, pushed)

	require.Len(t, rem.upserted, 1)
	assert.Equal(t, int64(100), rem.upserted[0][0].Balance)

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Balance)
	assert.True(t, got.PendingSync, "the unpushed edit must stay pending")
}

func TestPushToleratesRecordDeletedMidFlight(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))
	rem.onUpsert = func(_ []domain.Wallet) {
		require.NoError(t, store.Delete(context.Background(), w.ID))
	}

	pushed, err := engine.Push(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, pushed)
}

func TestPushClearsPendingOnlyOnSuccess(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	pushed, err := engine.Push(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.False(t, got.PendingSync)
	require.Len(t, rem.upserted, 1)
}

func TestPushFailureKeepsBatchPending(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{upsertErr: errors.New("connection refused")}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	_, err := engine.Push(context.Background(), owner)
	require.Error(t, err)

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ErrorNetwork, syncErr.Kind)
	assert.True(t, syncErr.Retryable())

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.PendingSync, "failed batch must stay pending")
}

func TestPushOfflineSucceedsWithZeroEffect(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Unavailable), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	pushed, err := engine.Push(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, pushed)
	assert.Empty(t, rem.upserted, "offline push must not touch the network")

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.PendingSync)
}

func TestPushNothingPendingSkipsNetwork(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{upsertErr: errors.New("should not be called")}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	pushed, err := engine.Push(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, pushed)
}

func TestPullOverwritesLocalAndClearsPending(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()

	local := pendingWallet(t, owner)
	local.Name = "local edit"
	require.NoError(t, store.Save(context.Background(), local))

	remoteVersion := *local
	remoteVersion.Name = "remote version"
	remoteVersion.Balance = 777
	remoteVersion.PendingSync = true // remote payloads may carry any flag value

	rem := &fakeRemote{remoteSet: []domain.Wallet{remoteVersion}}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	pulled, err := engine.Pull(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 1, pulled)

	got, err := store.Get(context.Background(), local.ID)
	require.NoError(t, err)
	assert.Equal(t, "remote version", got.Name)
	assert.Equal(t, int64(777), got.Balance)
	assert.False(t, got.PendingSync, "pulled records are synced by definition")
}

func TestSyncAllAbortsPullWhenPushFails(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()

	local := pendingWallet(t, owner)
	local.Name = "unpushed edit"
	require.NoError(t, store.Save(context.Background(), local))

	remoteVersion := *local
	remoteVersion.Name = "stale remote"
	rem := &fakeRemote{
		upsertErr: errors.New("boom"),
		remoteSet: []domain.Wallet{remoteVersion},
	}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	_, err := engine.SyncAll(context.Background(), owner)
	require.Error(t, err)
	assert.Zero(t, rem.selectCalls, "pull must not run after a failed push")

	got, err := store.Get(context.Background(), local.ID)
	require.NoError(t, err)
	assert.Equal(t, "unpushed edit", got.Name, "unpushed edits must survive")
	assert.True(t, got.PendingSync)
}

func TestSyncAllIsIdempotent(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	synced := w.WithSynced(true)
	rem := &fakeRemote{remoteSet: []domain.Wallet{synced}}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	stats, err := engine.SyncAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, Stats{Pushed: 1, Pulled: 1}, stats)

	stats, err = engine.SyncAll(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, stats.Pushed, "second cycle has nothing to push")
	require.Len(t, rem.upserted, 1)
}

func TestRejectedBatchIsNotRetryable(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{upsertErr: fmt.Errorf("%w: status 422", remote.ErrRejected)}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	_, err := engine.Push(context.Background(), owner)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ErrorRejected, syncErr.Kind)
	assert.False(t, syncErr.Retryable())

	got, err := store.Get(context.Background(), w.ID)
	require.NoError(t, err)
	assert.True(t, got.PendingSync, "rejected batch stays pending wholesale")
}

func TestTimeoutClassifiedAsTimeout(t *testing.T) {
	owner := uuid.New()
	store := newMemStore()
	rem := &fakeRemote{upsertErr: context.DeadlineExceeded}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	w := pendingWallet(t, owner)
	require.NoError(t, store.Save(context.Background(), w))

	_, err := engine.Push(context.Background(), owner)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, ErrorTimeout, syncErr.Kind)
	assert.True(t, syncErr.Retryable())
}

func TestDeleteRemoteOfflineIsDeferred(t *testing.T) {
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Unavailable), store, rem)

	require.NoError(t, engine.DeleteRemote(context.Background(), uuid.New()))
	assert.Empty(t, rem.deleted)
}

func TestDeleteRemotePropagatesWhenOnline(t *testing.T) {
	store := newMemStore()
	rem := &fakeRemote{}
	engine := newTestEngine(connectivity.NewManual(connectivity.Available), store, rem)

	id := uuid.New()
	require.NoError(t, engine.DeleteRemote(context.Background(), id))
	require.Len(t, rem.deleted, 1)
	assert.Equal(t, id, rem.deleted[0])
}
