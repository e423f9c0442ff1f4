// Package provider contains external data providers, currently the
// exchangerate-api.com client backing the rate cache.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/exchange"
)

// ExchangeRateAPISource fetches rate tables from exchangerate-api.com (v6
// endpoint) and implements exchange.Source.
type ExchangeRateAPISource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// exchangeRateAPIResponseV6 is the v6 response envelope.
// See: https://www.exchangerate-api.com/docs/standard-requests
type exchangeRateAPIResponseV6 struct {
	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	ErrorType       string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPISource creates a source using config.
func NewExchangeRateAPISource(cfg config.ExchangeRate, logger *slog.Logger) *ExchangeRateAPISource {
	return &ExchangeRateAPISource{
		apiKey:  cfg.ApiKey,
		baseURL: cfg.ApiUrl, // Should be like https://v6.exchangerate-api.com/v6
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// RatesFor implements exchange.Source. The API reports how many units of each
// currency one base unit buys; the cache wants the value of each currency in
// base units, so every rate is inverted on the way in.
func (p *ExchangeRateAPISource) RatesFor(ctx context.Context, base string) (exchange.Table, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rates request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rates API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp exchangeRateAPIResponseV6
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("rates API returned result=%s error=%s", apiResp.Result, apiResp.ErrorType)
	}

	table := make(exchange.Table, len(apiResp.ConversionRates)+1)
	for code, rate := range apiResp.ConversionRates {
		if rate == 0 {
			continue
		}
		table[code] = 1 / rate
	}
	table[base] = 1.0

	p.logger.Info("fetched exchange rates", "base", base, "count", len(table))
	return table, nil
}
