// Package remote implements the Remote Ledger Service client over HTTP/JSON.
// The wire format is an implementation detail of this adapter; the core only
// sees the remote.Service contract.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/domain"
	"github.com/pocketledger/pocketledger/pkg/remote"
	"github.com/sony/gobreaker"
)

// Client talks to one entity collection of the remote ledger service. A
// circuit breaker keeps a flapping backend from being hammered by every sync
// trigger; an open breaker reads as a network failure and the batch stays
// pending.
type Client[T domain.Syncable[T]] struct {
	baseURL    string
	entity     string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a client for one entity collection, e.g. "wallets".
func NewClient[T domain.Syncable[T]](cfg config.Remote, entity string, logger *slog.Logger) *Client[T] {
	return &Client[T]{
		baseURL: cfg.BaseURL,
		entity:  entity,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "remote-" + entity,
			// A rejection is the backend working as intended, not an outage.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, remote.ErrRejected)
			},
		}),
		logger: logger.With("entity", entity),
	}
}

// Upsert implements remote.Service. Any non-2xx response rejects the whole
// batch; the caller keeps it pending.
func (c *Client[T]) Upsert(ctx context.Context, records []T) error {
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	u := fmt.Sprintf("%s/v1/%s/batch", c.baseURL, c.entity)
	_, err = c.do(ctx, http.MethodPut, u, bytes.NewReader(body))
	return err
}

// SelectByOwner implements remote.Service.
func (c *Client[T]) SelectByOwner(ctx context.Context, owner uuid.UUID) ([]T, error) {
	u := fmt.Sprintf("%s/v1/%s?owner_id=%s", c.baseURL, c.entity, url.QueryEscape(owner.String()))
	data, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.entity, err)
	}
	return records, nil
}

// DeleteByID implements remote.Service. A 404 means the record is already
// gone remotely and counts as success.
func (c *Client[T]) DeleteByID(ctx context.Context, id uuid.UUID) error {
	u := fmt.Sprintf("%s/v1/%s/%s", c.baseURL, c.entity, id)
	_, err := c.do(ctx, http.MethodDelete, u, nil)
	return err
}

func (c *Client[T]) do(ctx context.Context, method, u string, body io.Reader) ([]byte, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, method, u, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case method == http.MethodDelete && resp.StatusCode == http.StatusNotFound:
			return data, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			c.logger.Warn("remote rejected request",
				"method", method, "status", resp.StatusCode, "body", string(data))
			return nil, fmt.Errorf("%w: status %d", remote.ErrRejected, resp.StatusCode)
		default:
			return nil, fmt.Errorf("remote %s %s: status %d", method, c.entity, resp.StatusCode)
		}
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
