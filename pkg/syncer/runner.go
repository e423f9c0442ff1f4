package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/connectivity"
	"golang.org/x/sync/errgroup"
)

// Syncer is the type-erased face of an Engine, letting the runner hold one
// engine per entity family.
type Syncer interface {
	Name() string
	SyncAll(ctx context.Context, owner uuid.UUID) (Stats, error)
	DeleteRemote(ctx context.Context, id uuid.UUID) error
}

// Runner drives every registered engine: it reacts to connectivity-available
// events, serves explicit "enter screen" triggers, and cancels in-flight
// work when connectivity drops. Sync failures are logged and left for retry;
// they never surface as user-facing errors.
type Runner struct {
	owner   uuid.UUID
	conn    connectivity.Monitor
	logger  *slog.Logger
	engines []Syncer

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewRunner creates a runner syncing all engines for a single owner (the
// device user).
func NewRunner(owner uuid.UUID, conn connectivity.Monitor, logger *slog.Logger, engines ...Syncer) *Runner {
	return &Runner{
		owner:   owner,
		conn:    conn,
		logger:  logger,
		engines: engines,
	}
}

// Start launches the background loop observing connectivity changes. It
// returns immediately; Stop shuts the loop down.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.stopped != nil {
		r.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	// Stop nils the field; the goroutine must close the channel it was
	// started with, not whatever the field holds by then.
	stopped := make(chan struct{})
	r.stopped = stopped
	r.mu.Unlock()

	changes := r.conn.Observe()
	go func() {
		defer close(stopped)

		var inflight sync.WaitGroup
		var inflightCancel context.CancelFunc
		for {
			select {
			case <-loopCtx.Done():
				if inflightCancel != nil {
					inflightCancel()
				}
				inflight.Wait()
				return
			case status := <-changes:
				switch status {
				case connectivity.Available:
					// The cycle runs in its own goroutine so a later
					// Unavailable event can cancel it mid-flight.
					syncCtx, cancelSync := context.WithCancel(loopCtx)
					inflightCancel = cancelSync
					inflight.Add(1)
					go func() {
						defer inflight.Done()
						r.syncAll(syncCtx)
					}()
				case connectivity.Unavailable:
					// Abandon in-flight work; partially applied remote
					// writes are not rolled back, the batch stays pending.
					if inflightCancel != nil {
						inflightCancel()
						inflightCancel = nil
					}
				}
			}
		}
	}()
}

// Stop cancels the background loop and waits for it to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	stopped := r.stopped
	r.cancel = nil
	r.stopped = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// Trigger runs one sync cycle across all engines, for explicit "enter
// screen" calls. Failures are logged, not returned: a pending indicator is
// the only surface sync state has.
func (r *Runner) Trigger(ctx context.Context) {
	r.syncAll(ctx)
}

// PropagateDelete forwards a local delete of the named entity family to the
// remote set, best effort. A failed or offline propagation is logged and
// left for the remote's own set to reconcile; the local delete stands.
func (r *Runner) PropagateDelete(ctx context.Context, entity string, id uuid.UUID) {
	for _, eng := range r.engines {
		if eng.Name() != entity {
			continue
		}
		if err := eng.DeleteRemote(ctx, id); err != nil {
			r.logger.Warn("remote delete deferred", "entity", entity, "id", id, "error", err)
		}
		return
	}
	r.logger.Warn("no engine for entity", "entity", entity)
}

func (r *Runner) syncAll(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	for _, eng := range r.engines {
		eng := eng
		g.Go(func() error {
			stats, err := eng.SyncAll(gctx, r.owner)
			if err != nil {
				r.logger.Warn("sync deferred",
					"entity", eng.Name(), "owner", r.owner, "error", err)
				// Deliberately not propagated: one entity family failing
				// must not stop the others, and routine connectivity loss
				// is not an error state.
				return nil
			}
			if stats.Pushed > 0 || stats.Pulled > 0 {
				r.logger.Info("sync cycle complete",
					"entity", eng.Name(), "pushed", stats.Pushed, "pulled", stats.Pulled)
			}
			return nil
		})
	}
	_ = g.Wait()
}
