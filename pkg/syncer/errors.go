package syncer

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/pocketledger/pocketledger/pkg/remote"
)

// ErrorKind tags the failure modes of a sync operation.
type ErrorKind int

const (
	// ErrorNetwork covers unreachable or misbehaving remote endpoints.
	ErrorNetwork ErrorKind = iota
	// ErrorTimeout covers deadline-exceeded remote calls. Treated like a
	// connectivity loss: the batch stays pending for retry.
	ErrorTimeout
	// ErrorRejected covers batches the remote service refused. The whole
	// batch is retried wholesale next time; no record is marked synced.
	ErrorRejected
)

// String returns a readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorTimeout:
		return "timeout"
	case ErrorRejected:
		return "rejected"
	default:
		return "network"
	}
}

// SyncError is the tagged error every failed push/pull surfaces. Routine
// connectivity failures are logged by the runner and never reach the user.
type SyncError struct {
	Kind   ErrorKind
	Entity string
	Err    error
}

// Error implements error.
func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %s: %v", e.Entity, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error { return e.Err }

// Retryable reports whether the failure resolves itself on a later sync
// trigger. Rejections need the offending records fixed first.
func (e *SyncError) Retryable() bool { return e.Kind != ErrorRejected }

// classify wraps a remote call failure into a SyncError with the right kind.
func classify(entity string, err error) *SyncError {
	kind := ErrorNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, remote.ErrRejected):
		kind = ErrorRejected
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrorTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = ErrorTimeout
	}
	return &SyncError{Kind: kind, Entity: entity, Err: err}
}
