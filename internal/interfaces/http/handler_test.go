package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	appmarket "main/internal/application/service/market"
	appportfolio "main/internal/application/service/portfolio"
	"main/internal/infrastructure/coingecko"
	infraportfolio "main/internal/infrastructure/portfolio"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamMarkets = `[
	{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img/btc.png","current_price":50000,"price_change_percentage_24h":2.5,"market_cap":1000000000000}
]`

const upstreamDetail = `{
	"id":"bitcoin","symbol":"btc","name":"Bitcoin",
	"image":{"large":"https://img/btc-large.png"},
	"market_data":{"current_price":{"usd":50000,"idr":775000000}}
}`

const upstreamChart = `{"prices":[[1700000000000,50000],[1700007200000,50500]]}`

const upstreamOhlc = `[[1700000000000,50000,50500,49800,50200]]`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/coins/markets":
			_, _ = w.Write([]byte(upstreamMarkets))
		case strings.HasSuffix(r.URL.Path, "/market_chart"):
			_, _ = w.Write([]byte(upstreamChart))
		case strings.HasSuffix(r.URL.Path, "/ohlc"):
			_, _ = w.Write([]byte(upstreamOhlc))
		case strings.HasPrefix(r.URL.Path, "/coins/"):
			_, _ = w.Write([]byte(upstreamDetail))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	client := coingecko.NewClient(coingecko.Config{BaseURL: upstream.URL}, nil, nil, logrus.New())
	marketSvc := appmarket.NewService(client)

	repo, err := infraportfolio.NewRepository(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	portfolioSvc := appportfolio.NewService(repo, marketSvc)

	return NewHandler(marketSvc, portfolioSvc, nil, 0)
}

func doRequest(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetCoinsMarkets(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/markets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var coins []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &coins))
	require.Len(t, coins, 1)
	assert.Equal(t, "bitcoin", coins[0]["id"])
}

func TestHandler_GetCoinsMarkets_BadParams(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/markets?per_page=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/coins/markets?page=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetCoinDetail(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bitcoin"`)
}

func TestHandler_GetCoinChart(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin/chart?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var chart struct {
		Prices [][]float64 `json:"prices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Len(t, chart.Prices, 2)
}

func TestHandler_GetCoinChart_InvalidDays(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin/chart?days=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetCoinCandles(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin/candles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var candles [][]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candles))
	require.Len(t, candles, 2)
	require.Len(t, candles[0], 5)
}

func TestHandler_GetCoinOhlc(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin/ohlc?days=7", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var candles [][]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candles))
	require.Len(t, candles, 1)
}

func TestHandler_GetCoinOhlc_DaysRequired(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/bitcoin/ohlc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PortfolioLifecycle(t *testing.T) {
	h := newTestHandler(t)

	// Empty portfolio.
	rec := doRequest(t, h, http.MethodGet, "/api/v1/portfolio/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Holdings       []map[string]any `json:"holdings"`
		TotalValue     float64          `json:"total_value"`
		TotalFormatted string           `json:"total_formatted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Holdings)
	assert.Equal(t, "$0.00", view.TotalFormatted)

	// Add a position.
	rec = doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `{"coin_id":"bitcoin","amount":0.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var holding struct {
		ID    string  `json:"id"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holding))
	assert.Equal(t, 25000.0, holding.Value)

	// List shows the total.
	rec = doRequest(t, h, http.MethodGet, "/api/v1/portfolio/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, 25000.0, view.TotalValue)
	assert.Equal(t, "$25,000.00", view.TotalFormatted)

	// Switch to IDR revalues.
	rec = doRequest(t, h, http.MethodPut, "/api/v1/portfolio/currency", `{"currency":"idr"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 387_500_000.0, view.TotalValue)
	assert.Equal(t, "Rp387.500.000", view.TotalFormatted)

	// Remove it.
	rec = doRequest(t, h, http.MethodDelete, "/api/v1/portfolio/"+holding.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/portfolio/", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Holdings)
}

func TestHandler_AddHolding_Validation(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `{"coin_id":"","amount":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `{"coin_id":"bitcoin","amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `{"coin_id":"bitcoin","amount":1,"currency":"eur"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RemoveHolding_BadID(t *testing.T) {
	h := newTestHandler(t)

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/portfolio/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Preferences(t *testing.T) {
	h := newTestHandler(t)

	// Defaults when nothing stored.
	rec := doRequest(t, h, http.MethodGet, "/api/v1/preferences/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lang":"en","theme":"dark"}`, rec.Body.String())

	// Partial update keeps the other default.
	rec = doRequest(t, h, http.MethodPut, "/api/v1/preferences/", `{"lang":"id"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lang":"id","theme":"dark"}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodPut, "/api/v1/preferences/", `{"theme":"light"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"lang":"id","theme":"light"}`, rec.Body.String())
}

func TestHandler_UpstreamFailureIsBadGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(upstream.Close)

	client := coingecko.NewClient(coingecko.Config{BaseURL: upstream.URL}, nil, nil, logrus.New())
	marketSvc := appmarket.NewService(client)

	repo, err := infraportfolio.NewRepository(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	portfolioSvc := appportfolio.NewService(repo, marketSvc)

	h := NewHandler(marketSvc, portfolioSvc, nil, 0)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/coins/markets", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	rec = doRequest(t, h, http.MethodPost, "/api/v1/portfolio/", `{"coin_id":"bitcoin","amount":1}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
