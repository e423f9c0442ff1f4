// Package connectivity probes the remote ledger service's health endpoint
// and publishes reachability transitions to the sync runner.
package connectivity

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/connectivity"
)

// Prober polls a health URL on a fixed interval and implements
// connectivity.Monitor. Only transitions are published; a steady state
// produces no events.
type Prober struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger

	mu      sync.Mutex
	status  connectivity.Status
	watcher chan connectivity.Status

	cancel context.CancelFunc
	done   chan struct{}
}

// NewProber builds a prober from config. It starts out Unavailable until the
// first successful probe.
func NewProber(remoteCfg config.Remote, cfg config.Connectivity, logger *slog.Logger) *Prober {
	return &Prober{
		url:      remoteCfg.BaseURL + remoteCfg.HealthPath,
		interval: cfg.ProbeInterval,
		client:   &http.Client{Timeout: cfg.ProbeTimeout},
		logger:   logger,
		status:   connectivity.Unavailable,
		watcher:  make(chan connectivity.Status, 1),
	}
}

// Current implements connectivity.Monitor.
func (p *Prober) Current() connectivity.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Observe implements connectivity.Monitor.
func (p *Prober) Observe() <-chan connectivity.Status {
	return p.watcher
}

// Start begins probing. The first probe runs immediately so a freshly
// started app with a reachable backend syncs without waiting an interval.
func (p *Prober) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		p.probe(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

// Stop halts probing and waits for the loop to exit.
func (p *Prober) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

func (p *Prober) probe(ctx context.Context) {
	status := connectivity.Unavailable
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err == nil {
		resp, err := p.client.Do(req)
		if err == nil {
			resp.Body.Close() //nolint:errcheck
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				status = connectivity.Available
			}
		}
	}
	p.publish(status)
}

func (p *Prober) publish(status connectivity.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if status == p.status {
		return
	}
	p.status = status
	p.logger.Info("connectivity changed", "status", status)
	select {
	case p.watcher <- status:
	default:
		// Drop the stale queued transition; the reader only cares about
		// the latest state and will read Current on wake.
		select {
		case <-p.watcher:
		default:
		}
		p.watcher <- status
	}
}
