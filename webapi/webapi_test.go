package webapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraconnectivity "github.com/pocketledger/pocketledger/infra/connectivity"
	"github.com/pocketledger/pocketledger/infra/initializer"
	"github.com/pocketledger/pocketledger/pkg/config"
	"github.com/pocketledger/pocketledger/pkg/exchange"
	"github.com/pocketledger/pocketledger/pkg/service/ledger"
	"github.com/pocketledger/pocketledger/pkg/service/loan"
	"github.com/pocketledger/pocketledger/pkg/service/planned"
	"github.com/pocketledger/pocketledger/pkg/service/wallet"
	"github.com/pocketledger/pocketledger/pkg/syncer"
	"github.com/pocketledger/pocketledger/pkg/testutils"
	"github.com/pocketledger/pocketledger/webapi"
)

type tableSource struct {
	table exchange.Table
}

func (s tableSource) RatesFor(_ context.Context, _ string) (exchange.Table, error) {
	return s.table, nil
}

func newTestApp(t *testing.T) (*fiber.App, *initializer.Deps) {
	t.Helper()
	logger := testutils.NewTestLogger()
	uow := testutils.NewTestUoW(t)

	rates := exchange.New(tableSource{exchange.Table{"USD": 1.0, "EUR": 1.08}}, logger, "USD", time.Hour)
	require.NoError(t, rates.Refresh(context.Background()))

	ledgerSvc := ledger.New(uow, rates, logger)
	owner := uuid.New()
	deps := &initializer.Deps{
		Config: &config.App{},
		Logger: logger,
		Uow:    uow,
		Owner:  owner,
		Prober: infraconnectivity.NewProber(config.Remote{}, config.Connectivity{}, logger),
		Rates:  rates,
		Runner: syncer.NewRunner(owner, nil, logger),

		Ledger:  ledgerSvc,
		Wallets: wallet.New(uow, rates, logger),
		Loans:   loan.New(uow, logger),
		Planned: planned.New(uow, ledgerSvc, logger),
	}
	return webapi.New(deps), deps
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func TestWalletLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/wallets",
		map[string]any{"name": "Cash", "currency": "EUR"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	id := data["id"].(string)
	assert.Equal(t, "EUR", data["currency"])

	resp, body = doJSON(t, app, http.MethodGet, "/wallets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = doJSON(t, app, http.MethodPatch, "/wallets/"+id+"/archived",
		map[string]any{"value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/wallets/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["archived"])
}

func TestGetUnknownWalletIsProblemDetails(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/wallets/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Equal(t, float64(http.StatusNotFound), body["status"])
	assert.NotEmpty(t, body["title"])
}

func TestBadWalletIDIs400(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/wallets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWalletValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/wallets", map[string]any{"currency": "EUR"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/wallets",
		map[string]any{"name": "Cash", "currency": "eur"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTransactionAffectsNetWorth(t *testing.T) {
	app, _ := newTestApp(t)

	_, body := doJSON(t, app, http.MethodPost, "/wallets",
		map[string]any{"name": "Cash", "currency": "USD"})
	walletID := body["data"].(map[string]any)["id"].(string)

	resp, _ := doJSON(t, app, http.MethodPost, "/transactions", map[string]any{
		"wallet_id": walletID,
		"kind":      "INCOME",
		"amount":    10000,
		"note":      "salary",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/wallets/net-worth", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "USD", data["currency"])
	assert.Equal(t, float64(10000), data["total"])
}

func TestSyncStatusReportsPendingCounts(t *testing.T) {
	app, _ := newTestApp(t)

	_, _ = doJSON(t, app, http.MethodPost, "/wallets",
		map[string]any{"name": "Cash", "currency": "USD"})

	resp, body := doJSON(t, app, http.MethodGet, "/sync/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["online"])
	pending := data["pending"].(map[string]any)
	assert.Equal(t, float64(1), pending["wallets"])
	assert.Equal(t, float64(0), pending["transactions"])
}

func TestSyncTriggerAlwaysSucceeds(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/sync/trigger", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRatesEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/rates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "USD", data["base"])
	assert.Equal(t, false, data["stale"])

	resp, body = doJSON(t, app, http.MethodPost, "/rates/convert", map[string]any{
		"amount": 1080,
		"from":   "EUR",
		"to":     "USD",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]any)
	// 1080 EUR at 1.08 USD per EUR is 1166.4, rounded half away from zero.
	assert.Equal(t, float64(1166), data["amount"])
	assert.InDelta(t, 1.08, data["rate"].(float64), 1e-9)
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
