package syncer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pocketledger/pocketledger/pkg/connectivity"
	"github.com/pocketledger/pocketledger/pkg/testutils"
)

// countingSyncer is a Syncer stub counting cycles.
type countingSyncer struct {
	name    string
	cycles  atomic.Int64
	deletes atomic.Int64
	err     error
}

func (s *countingSyncer) Name() string { return s.name }

func (s *countingSyncer) SyncAll(_ context.Context, _ uuid.UUID) (Stats, error) {
	s.cycles.Add(1)
	if s.err != nil {
		return Stats{}, s.err
	}
	return Stats{Pushed: 1}, nil
}

func (s *countingSyncer) DeleteRemote(_ context.Context, _ uuid.UUID) error {
	s.deletes.Add(1)
	return s.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestRunnerSyncsOnConnectivityGain(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Unavailable)
	eng := &countingSyncer{name: "wallets"}
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), eng)

	runner.Start(context.Background())
	defer runner.Stop()

	assert.Zero(t, eng.cycles.Load())

	conn.Set(connectivity.Available)
	waitFor(t, func() bool { return eng.cycles.Load() == 1 })
}

func TestRunnerTriggerRunsAllEngines(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Available)
	first := &countingSyncer{name: "wallets"}
	second := &countingSyncer{name: "transactions"}
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), first, second)

	runner.Trigger(context.Background())

	assert.Equal(t, int64(1), first.cycles.Load())
	assert.Equal(t, int64(1), second.cycles.Load())
}

func TestRunnerFailuresDoNotStopOtherEngines(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Available)
	failing := &countingSyncer{name: "wallets", err: errors.New("remote down")}
	healthy := &countingSyncer{name: "transactions"}
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), failing, healthy)

	runner.Trigger(context.Background())

	assert.Equal(t, int64(1), failing.cycles.Load())
	assert.Equal(t, int64(1), healthy.cycles.Load())
}

func TestRunnerPropagateDeleteHitsMatchingEngine(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Available)
	wallets := &countingSyncer{name: "wallets"}
	transactions := &countingSyncer{name: "transactions"}
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), wallets, transactions)

	runner.PropagateDelete(context.Background(), "transactions", uuid.New())

	assert.Zero(t, wallets.deletes.Load())
	assert.Equal(t, int64(1), transactions.deletes.Load())
}

func TestRunnerPropagateDeleteSwallowsFailures(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Available)
	failing := &countingSyncer{name: "transactions", err: errors.New("remote down")}
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), failing)

	runner.PropagateDelete(context.Background(), "transactions", uuid.New())
	runner.PropagateDelete(context.Background(), "unknown", uuid.New())

	assert.Equal(t, int64(1), failing.deletes.Load())
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Unavailable)
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger())

	runner.Start(context.Background())
	runner.Stop()
	runner.Stop()
}

func TestRunnerSurvivesStartStopChurn(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Unavailable)
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), &countingSyncer{name: "wallets"})

	// Stop immediately after Start so the loop goroutine's teardown races
	// the field reset in Stop.
	for i := 0; i < 50; i++ {
		runner.Start(context.Background())
		runner.Stop()
	}
}

// blockingSyncer parks inside SyncAll until its context is cancelled.
type blockingSyncer struct {
	started   chan struct{}
	cancelled chan struct{}
}

func newBlockingSyncer() *blockingSyncer {
	return &blockingSyncer{
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
	}
}

func (s *blockingSyncer) Name() string { return "wallets" }

func (s *blockingSyncer) SyncAll(ctx context.Context, _ uuid.UUID) (Stats, error) {
	close(s.started)
	<-ctx.Done()
	close(s.cancelled)
	return Stats{}, ctx.Err()
}

func (s *blockingSyncer) DeleteRemote(_ context.Context, _ uuid.UUID) error { return nil }

func TestRunnerCancelsInflightCycleOnConnectivityLoss(t *testing.T) {
	conn := connectivity.NewManual(connectivity.Unavailable)
	eng := newBlockingSyncer()
	runner := NewRunner(uuid.New(), conn, testutils.NewTestLogger(), eng)

	runner.Start(context.Background())
	defer runner.Stop()

	conn.Set(connectivity.Available)
	select {
	case <-eng.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sync cycle never started")
	}

	conn.Set(connectivity.Unavailable)
	select {
	case <-eng.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("connectivity loss did not cancel the in-flight cycle")
	}
}
