// Package coingecko is the client for the public CoinGecko REST API. Each
// read resolves through local sources (bundled snapshot, TTL cache) before
// a live request; a single failed attempt is final — retrying is the
// caller's affordance, not the client's.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	market "main/internal/domain/entity/market"
	"main/internal/domain/interfaces"
	"main/internal/infrastructure/cache"
	"main/internal/infrastructure/snapshot"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultVsCurrency = "usd"
	DefaultOrder      = "market_cap_desc"
	DefaultPerPage    = 50
	DefaultPage       = 1
	DefaultChartDays  = 7

	apiKeyHeader = "X-CG-Api-Key"
)

// Config carries the build-time constants of the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	VsCurrency string
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	apiKey     string
	vsCurrency string
	httpClient *http.Client
	store      *cache.Store
	snapshots  *snapshot.Loader
	logger     *logrus.Logger
}

var _ interfaces.MarketDataProvider = (*Client)(nil)

// NewClient wires the client with its local sources. Either store or
// snapshots may be nil; a missing source simply never hits.
func NewClient(cfg Config, store *cache.Store, snapshots *snapshot.Loader, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = DefaultVsCurrency
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		vsCurrency: cfg.VsCurrency,
		httpClient: cfg.HTTPClient,
		store:      store,
		snapshots:  snapshots,
		logger:     logger,
	}
}

// CoinsMarkets fetches the paginated coin listing. Resolution order:
// bundled snapshot, cache keyed by the canonical parameters, live request.
func (c *Client) CoinsMarkets(ctx context.Context, params interfaces.MarketsParams) ([]market.Coin, error) {
	query := c.marketsQuery(params)
	key := cache.Key("markets", query)

	raw := c.resolve(
		c.snapshotSource(snapshot.CoinListFile),
		c.cacheSource(key),
	)
	if raw == nil {
		var err error
		raw, err = c.get(ctx, "/coins/markets", query)
		if err != nil {
			return nil, err
		}
		c.cachePut(key, raw)
	}

	var coins []market.Coin
	if err := json.Unmarshal(raw, &coins); err != nil {
		return nil, &ParseError{Resource: "coins markets", Err: err}
	}
	return coins, nil
}

// CoinDetail fetches the full payload for one coin. Always a live call:
// detail is never snapshotted or cached.
func (c *Client) CoinDetail(ctx context.Context, coinID string) (*market.CoinDetail, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}

	raw, err := c.get(ctx, "/coins/"+url.PathEscape(coinID), nil)
	if err != nil {
		return nil, err
	}

	var detail market.CoinDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, &ParseError{Resource: "coin detail", Err: err}
	}
	return &detail, nil
}

// CoinMarketChart fetches a price-history series. Resolution order:
// bundled snapshot, cache keyed by coin and range, live request.
func (c *Client) CoinMarketChart(ctx context.Context, coinID string, days int) (*market.Chart, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	if days <= 0 {
		days = DefaultChartDays
	}
	key := cache.ChartKey(coinID, days)

	raw := c.resolve(
		c.snapshotSource(snapshot.ChartFile),
		c.cacheSource(key),
	)
	if raw == nil {
		var err error
		raw, err = c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", map[string]string{
			"vs_currency": c.vsCurrency,
			"days":        strconv.Itoa(days),
		})
		if err != nil {
			return nil, err
		}
		c.cachePut(key, raw)
	}

	var chart market.Chart
	if err := json.Unmarshal(raw, &chart); err != nil {
		return nil, &ParseError{Resource: "market chart", Err: err}
	}
	return &chart, nil
}

// CoinOhlc fetches candle data. Resolution order: cache keyed by coin and
// range, live request. No snapshot fixture exists for candles.
func (c *Client) CoinOhlc(ctx context.Context, coinID string, days int) ([]market.Candle, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	if days <= 0 {
		return nil, ErrInvalidDays
	}
	key := cache.OhlcKey(coinID, days)

	raw := c.resolve(c.cacheSource(key))
	if raw == nil {
		var err error
		raw, err = c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/ohlc", map[string]string{
			"vs_currency": c.vsCurrency,
			"days":        strconv.Itoa(days),
		})
		if err != nil {
			return nil, err
		}
		c.cachePut(key, raw)
	}

	var candles []market.Candle
	if err := json.Unmarshal(raw, &candles); err != nil {
		return nil, &ParseError{Resource: "ohlc", Err: err}
	}
	return candles, nil
}

func (c *Client) marketsQuery(params interfaces.MarketsParams) map[string]string {
	if params.VsCurrency == "" {
		params.VsCurrency = c.vsCurrency
	}
	if params.Order == "" {
		params.Order = DefaultOrder
	}
	if params.PerPage <= 0 {
		params.PerPage = DefaultPerPage
	}
	if params.Page <= 0 {
		params.Page = DefaultPage
	}

	query := map[string]string{
		"vs_currency": params.VsCurrency,
		"order":       params.Order,
		"per_page":    strconv.Itoa(params.PerPage),
		"page":        strconv.Itoa(params.Page),
	}
	for name, value := range params.Extra {
		query[name] = value
	}
	return query
}

// get performs one live request. The API key header is attached only when
// a key is configured; without one the request goes out unauthenticated
// and the server decides its fate.
func (c *Client) get(ctx context.Context, path string, query map[string]string) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		values := url.Values{}
		for name, value := range query {
			values.Set(name, value)
		}
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

func (c *Client) cachePut(key string, raw json.RawMessage) {
	if c.store == nil {
		return
	}
	c.store.Set(key, raw)
}
