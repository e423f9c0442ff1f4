// Package syncer implements the offline-first synchronization engine: one
// generic push/pull routine instantiated per entity type, gated by the
// connectivity signal. Push uploads locally-pending records and clears their
// pending flag only on success; pull overwrites local state with the remote
// authoritative set (last-writer-wins). SyncAll always pushes before pulling
// so local edits reach the remote before the remote can overwrite them.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/connectivity"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/remote"
	"github.com/pocketledger/pocketledger/pkg/repository"
	"github.com/pocketledger/pocketledger/pkg/utils"
)

// DefaultTimeout bounds every remote call made by an engine.
const DefaultTimeout = 15 * time.Second

// Stats reports what a sync cycle moved.
type Stats struct {
	Pushed int
	Pulled int
}

// Engine synchronizes one entity type between the local store and the remote
// service. Push/pull for a given owner are serialized: concurrent sync
// triggers for the same owner queue up instead of interleaving.
type Engine[T domain.Syncable[T]] struct {
	entity  string
	local   repository.Store[T]
	remote  remote.Service[T]
	conn    connectivity.Monitor
	logger  *slog.Logger
	timeout time.Duration
	owners  *utils.KeyedMutex[uuid.UUID]
}

// NewEngine creates an engine for one entity type. The entity name is used
// for logging and error tagging only.
func NewEngine[T domain.Syncable[T]](
	entity string,
	local repository.Store[T],
	rem remote.Service[T],
	conn connectivity.Monitor,
	logger *slog.Logger,
	timeout time.Duration,
) *Engine[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine[T]{
		entity:  entity,
		local:   local,
		remote:  rem,
		conn:    conn,
		logger:  logger.With("entity", entity),
		timeout: timeout,
		owners:  utils.NewKeyedMutex[uuid.UUID](),
	}
}

// Name returns the entity name the engine synchronizes.
func (e *Engine[T]) Name() string { return e.entity }

// Push uploads the owner's pending records. With no pending records it
// returns immediately without a network call. When connectivity is
// unavailable it succeeds with zero effect: sync is deferred work, not an
// error state.
func (e *Engine[T]) Push(ctx context.Context, owner uuid.UUID) (int, error) {
	e.owners.Lock(owner)
	defer e.owners.Unlock(owner)
	return e.push(ctx, owner)
}

func (e *Engine[T]) push(ctx context.Context, owner uuid.UUID) (int, error) {
	if e.conn.Current() != connectivity.Available {
		return 0, nil
	}

	pending, err := e.local.ListPending(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("list pending %s: %w", e.entity, err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.remote.Upsert(callCtx, pending); err != nil {
		// The whole batch stays pending; at-least-once, retried wholesale.
		return 0, classify(e.entity, err)
	}

	// Only records unchanged since the snapshot may be marked synced: an
	// edit that landed mid-push was never uploaded, and clearing its flag
	// would hand the next pull a license to erase it.
	ids := make([]uuid.UUID, 0, len(pending))
	for i := range pending {
		current, err := e.local.Get(ctx, pending[i].EntityID())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return 0, fmt.Errorf("recheck %s: %w", e.entity, err)
		}
		if !(*current).ModifiedAt().Equal(pending[i].ModifiedAt()) {
			continue
		}
		ids = append(ids, pending[i].EntityID())
	}
	if len(ids) > 0 {
		if err := e.local.MarkSynced(ctx, ids); err != nil {
			return 0, fmt.Errorf("mark %s synced: %w", e.entity, err)
		}
	}

	e.logger.Debug("pushed pending records", "owner", owner, "count", len(ids))
	return len(ids), nil
}

// Pull fetches the owner's remote set and overwrites local state with it,
// clearing the pending flag on every record written. This is the
// last-writer-wins point: local edits that were not pushed first are lost.
func (e *Engine[T]) Pull(ctx context.Context, owner uuid.UUID) (int, error) {
	e.owners.Lock(owner)
	defer e.owners.Unlock(owner)
	return e.pull(ctx, owner)
}

func (e *Engine[T]) pull(ctx context.Context, owner uuid.UUID) (int, error) {
	if e.conn.Current() != connectivity.Available {
		return 0, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	records, err := e.remote.SelectByOwner(callCtx, owner)
	if err != nil {
		return 0, classify(e.entity, err)
	}

	for i := range records {
		rec := records[i].WithSynced(true)
		if err := e.local.Put(ctx, &rec); err != nil {
			return 0, fmt.Errorf("overwrite local %s: %w", e.entity, err)
		}
	}

	e.logger.Debug("pulled remote records", "owner", owner, "count", len(records))
	return len(records), nil
}

// SyncAll pushes then pulls, never the reverse. A failed push aborts the
// cycle before the pull so unpushed local edits are not overwritten; they
// stay pending for the next trigger.
func (e *Engine[T]) SyncAll(ctx context.Context, owner uuid.UUID) (Stats, error) {
	e.owners.Lock(owner)
	defer e.owners.Unlock(owner)

	var stats Stats
	pushed, err := e.push(ctx, owner)
	if err != nil {
		return stats, err
	}
	stats.Pushed = pushed

	pulled, err := e.pull(ctx, owner)
	if err != nil {
		return stats, err
	}
	stats.Pulled = pulled
	return stats, nil
}

// DeleteRemote propagates a local delete to the remote set when connectivity
// allows; offline deletes of already-synced records surface on the next
// explicit delete attempt. Records that never synced need no remote call.
func (e *Engine[T]) DeleteRemote(ctx context.Context, id uuid.UUID) error {
	if e.conn.Current() != connectivity.Available {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.remote.DeleteByID(callCtx, id); err != nil {
		return classify(e.entity, err)
	}
	return nil
}
