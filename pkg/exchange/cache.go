// Package exchange holds the currency conversion cache: a pivot-relative rate
// table for the user's base currency, refreshed explicitly and shared by the
// components that need conversion. There is no package-level state; the cache
// is constructed once and injected.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrRateUnavailable is returned when a currency code is absent from the rate
// table. Conversion never silently falls back to identity.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// Table maps a currency code to its rate relative to the source's pivot
// currency.
type Table map[string]float64

// Source supplies a full rate table for a base currency.
type Source interface {
	RatesFor(ctx context.Context, base string) (Table, error)
}

// Cache holds the rate table for the current base currency. Refreshes are
// coalesced: concurrent refresh requests for the same base issue a single
// fetch and share the result.
type Cache struct {
	source Source
	logger *slog.Logger
	ttl    time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	base      string
	table     Table
	fetchedAt time.Time
}

// New creates a Cache for the given base currency. The table starts empty;
// call Refresh before converting.
func New(source Source, logger *slog.Logger, base string, ttl time.Duration) *Cache {
	return &Cache{
		source: source,
		logger: logger,
		base:   base,
		ttl:    ttl,
	}
}

// Base returns the current base currency.
func (c *Cache) Base() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base
}

// SetBase switches the base currency and refreshes the table for it. The old
// table is dropped even if the refresh fails, so a failed switch never serves
// rates for the wrong base.
func (c *Cache) SetBase(ctx context.Context, base string) error {
	c.mu.Lock()
	if c.base != base {
		c.base = base
		c.table = nil
		c.fetchedAt = time.Time{}
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh fetches the rate table for the current base. Concurrent calls for
// the same base coalesce into one network fetch.
func (c *Cache) Refresh(ctx context.Context) error {
	base := c.Base()
	_, err, shared := c.group.Do(base, func() (any, error) {
		table, err := c.source.RatesFor(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
		}
		c.mu.Lock()
		// The base may have changed while the fetch was in flight; stale
		// results must not clobber the new base's table.
		if c.base == base {
			c.table = table
			c.fetchedAt = time.Now()
		}
		c.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("rate refresh failed", "base", base, "error", err)
		return err
	}
	if shared {
		c.logger.Debug("rate refresh coalesced", "base", base)
	}
	return nil
}

// Invalidate drops the table. The next conversion fails until a Refresh
// succeeds.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// Stale reports whether the table is older than the configured TTL or absent.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table == nil || time.Since(c.fetchedAt) > c.ttl
}

// Rate returns the conversion rate from one currency to another, derived from
// the pivot-relative table as rate[from]/rate[to].
func (c *Cache) Rate(from, to string) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rf, okFrom := c.table[from]
	rt, okTo := c.table[to]
	if !okFrom || !okTo || rt == 0 {
		return 0, fmt.Errorf("%w: %s->%s", ErrRateUnavailable, from, to)
	}
	return rf / rt, nil
}

// Convert converts an amount of minor units between currencies, returning the
// converted amount and the rate used. Rounding is half away from zero on the
// final minor-unit figure; intermediate math uses decimals, never floats on
// the amount itself.
func (c *Cache) Convert(amount int64, from, to string) (int64, float64, error) {
	c.mu.RLock()
	rf, okFrom := c.table[from]
	rt, okTo := c.table[to]
	c.mu.RUnlock()
	if !okFrom || !okTo || rt == 0 {
		return 0, 0, fmt.Errorf("%w: %s->%s", ErrRateUnavailable, from, to)
	}

	converted := decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(rf)).
		Div(decimal.NewFromFloat(rt)).
		Round(0)
	return converted.IntPart(), rf / rt, nil
}
