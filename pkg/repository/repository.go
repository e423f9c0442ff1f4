// Package repository defines the local ledger store contracts. The store owns
// the authoritative on-device copy of every entity; the pending flag marks
// which records the remote side has not confirmed yet.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
)

// ErrNotFound is returned when a record does not exist locally.
var ErrNotFound = errors.New("record not found")

// Store provides per-entity access to the local ledger table.
type Store[T domain.Syncable[T]] interface {
	// Get returns the record by id, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*T, error)

	// Save upserts the record as written: callers are expected to have set
	// PendingSync before handing the record over.
	Save(ctx context.Context, entity *T) error

	// Put overwrites the local record with an authoritative remote version,
	// pending flag included. This is the last-writer-wins point of a pull.
	Put(ctx context.Context, entity *T) error

	// Delete removes the record by id. Deleting a missing record is not an
	// error.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByOwner returns all records belonging to the owner.
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]T, error)

	// ListPending returns the owner's records still awaiting a push.
	ListPending(ctx context.Context, owner uuid.UUID) ([]T, error)

	// MarkSynced clears the pending flag on exactly the given ids.
	MarkSynced(ctx context.Context, ids []uuid.UUID) error

	// CountPending returns how many of the owner's records await a push.
	CountPending(ctx context.Context, owner uuid.UUID) (int64, error)
}
