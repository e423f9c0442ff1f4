// Package domain holds the entities of the offline-first ledger: wallets,
// transactions, loans, planned payments and the simple owned records that
// follow the same sync contract.
//
// Every entity carries a PendingSync flag meaning "local value not yet
// confirmed written to the remote service". Mutations always persist locally
// with PendingSync set; the sync engine clears it after a successful push or
// an authoritative pull.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Syncable is the contract every synchronized entity satisfies. The type
// parameter lets WithSynced return the concrete entity so the sync engine can
// stay fully generic.
type Syncable[T any] interface {
	// EntityID returns the stable identifier of the record.
	EntityID() uuid.UUID
	// Owner returns the id of the user the record belongs to.
	Owner() uuid.UUID
	// IsPending reports whether the record still awaits a push to the remote
	// service.
	IsPending() bool
	// ModifiedAt returns when the record last changed. The sync engine uses
	// it to detect edits that landed while a push was in flight.
	ModifiedAt() time.Time
	// WithSynced returns a copy of the record with the pending flag derived
	// from synced (synced=true clears it).
	WithSynced(synced bool) T
}
