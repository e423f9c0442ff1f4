// Package remote defines the consumed Remote Ledger Service boundary. The
// remote side owns the authoritative shared copy; this package prescribes no
// wire format.
package remote

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/domain"
)

// ErrRejected is wrapped by implementations when the remote service refuses a
// batch (as opposed to being unreachable). Rejected batches are not retried
// blindly; the offending records stay pending until fixed.
var ErrRejected = errors.New("rejected by remote service")

// Service is the per-entity remote contract. Upsert is the remote unit of
// atomicity: a sync call abandoned mid-flight may leave some batches applied,
// and that is acceptable because retries re-send the whole pending set.
type Service[T domain.Syncable[T]] interface {
	// Upsert bulk-writes the records to the remote set. Partial rejection is
	// an error and the caller must treat the whole batch as unpushed.
	Upsert(ctx context.Context, records []T) error

	// SelectByOwner fetches all remote records for the owner.
	SelectByOwner(ctx context.Context, owner uuid.UUID) ([]T, error)

	// DeleteByID removes a record from the remote set.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
