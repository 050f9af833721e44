// @title           Crypto Dashboard API
// @version         1.0
// @description     Market data, charts and portfolio valuation for the crypto dashboard

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	appinterfaces "main/internal/application/interfaces"
	appmarket "main/internal/application/service/market"
	appportfolio "main/internal/application/service/portfolio"
	domainmarket "main/internal/domain/entity/market"
	domainportfolio "main/internal/domain/entity/portfolio"
	"main/internal/domain/interfaces"
	"main/internal/format"
	"main/internal/infrastructure/coingecko"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	coinsBasePath     = "/api/v1/coins"
	portfolioBasePath = "/api/v1/portfolio"
	prefsBasePath     = "/api/v1/preferences"
)

var (
	errMissingCoinID   = errors.New("coin id path param required")
	errMissingHolding  = errors.New("holding id path param required")
	errInvalidDays     = errors.New("days query param must be a positive integer")
	errInvalidCurrency = errors.New("currency must be one of: usd, idr")
)

type Handler struct {
	router    *gin.Engine
	market    *appmarket.Service
	portfolio *appportfolio.Service
	cache     *redis.Client
	cacheTTL  time.Duration
}

var _ appinterfaces.HTTPHandler = (*Handler)(nil)

func NewHandler(market *appmarket.Service, portfolio *appportfolio.Service, cache *redis.Client, cacheTTL time.Duration) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:    router,
		market:    market,
		portfolio: portfolio,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	coins := h.router.Group(coinsBasePath)
	if h.cache != nil {
		coins.Use(h.cacheMiddleware())
	}
	{
		coins.GET("/markets", h.getCoinsMarkets)
		coins.GET("/:id", h.getCoinDetail)
		coins.GET("/:id/chart", h.getCoinChart)
		coins.GET("/:id/candles", h.getCoinCandles)
		coins.GET("/:id/ohlc", h.getCoinOhlc)
	}

	pf := h.router.Group(portfolioBasePath)
	{
		pf.GET("/", h.getPortfolio)
		pf.POST("/", h.addHolding)
		pf.DELETE("/:id", h.removeHolding)
		pf.PUT("/currency", h.setPortfolioCurrency)
	}

	prefs := h.router.Group(prefsBasePath)
	{
		prefs.GET("/", h.getPreferences)
		prefs.PUT("/", h.setPreferences)
	}
}

// Market data handlers

// getCoinsMarkets lists coins with market data
// @Summary      List coin markets
// @Description  Paginated coin listing with price, market cap and 24h change
// @Tags         coins
// @Produce      json
// @Param        vs_currency  query     string  false  "Quote currency"  default(usd)
// @Param        order        query     string  false  "Sort order"      default(market_cap_desc)
// @Param        per_page     query     int     false  "Page size"       default(50)
// @Param        page         query     int     false  "Page number"     default(1)
// @Success      200          {array}   domainmarket.Coin
// @Failure      400          {object}  map[string]string
// @Failure      502          {object}  map[string]string
// @Router       /coins/markets [get]
func (h *Handler) getCoinsMarkets(c *gin.Context) {
	params, err := parseMarketsParams(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	coins, err := h.market.CoinsMarkets(c.Request.Context(), params)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, coins)
}

// getCoinDetail returns full data for one coin
// @Summary      Get coin detail
// @Description  Full market data for a single coin, always fetched live
// @Tags         coins
// @Produce      json
// @Param        id   path      string  true  "Coin id"
// @Success      200  {object}  domainmarket.CoinDetail
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /coins/{id} [get]
func (h *Handler) getCoinDetail(c *gin.Context) {
	coinID := c.Param("id")
	if coinID == "" {
		writeError(c, http.StatusBadRequest, errMissingCoinID)
		return
	}
	detail, err := h.market.CoinDetail(c.Request.Context(), coinID)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// getCoinChart returns the price-history series
// @Summary      Get price chart
// @Description  Price history series for the line chart
// @Tags         coins
// @Produce      json
// @Param        id    path      string  true   "Coin id"
// @Param        days  query     int     false  "Range in days"  default(7)
// @Success      200   {object}  domainmarket.Chart
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /coins/{id}/chart [get]
func (h *Handler) getCoinChart(c *gin.Context) {
	coinID := c.Param("id")
	days, err := parseDays(c, coingecko.DefaultChartDays)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	chart, err := h.market.CoinMarketChart(c.Request.Context(), coinID, days)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// getCoinCandles returns candles derived from the price series
// @Summary      Get derived candles
// @Description  Candles bucketed client-side from the price history series
// @Tags         coins
// @Produce      json
// @Param        id    path      string  true   "Coin id"
// @Param        days  query     int     false  "Range in days"  default(7)
// @Success      200   {array}   domainmarket.Candle
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /coins/{id}/candles [get]
func (h *Handler) getCoinCandles(c *gin.Context) {
	coinID := c.Param("id")
	days, err := parseDays(c, coingecko.DefaultChartDays)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	candles, err := h.market.CoinCandles(c.Request.Context(), coinID, days, domainmarket.DefaultCandleWindow)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

// getCoinOhlc returns upstream OHLC candles
// @Summary      Get OHLC candles
// @Description  Candle data from the upstream OHLC endpoint
// @Tags         coins
// @Produce      json
// @Param        id    path      string  true  "Coin id"
// @Param        days  query     int     true  "Range in days"
// @Success      200   {array}   domainmarket.Candle
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /coins/{id}/ohlc [get]
func (h *Handler) getCoinOhlc(c *gin.Context) {
	coinID := c.Param("id")
	days, err := parseDays(c, 0)
	if err != nil || days <= 0 {
		writeError(c, http.StatusBadRequest, errInvalidDays)
		return
	}
	candles, err := h.market.CoinOhlc(c.Request.Context(), coinID, days)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, candles)
}

// Portfolio handlers

type holdingPayload struct {
	CoinID   string  `json:"coin_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type currencyPayload struct {
	Currency string `json:"currency"`
}

type holdingView struct {
	ID       string  `json:"id"`
	CoinID   string  `json:"coin_id"`
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	Price    float64 `json:"price"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type portfolioView struct {
	Holdings       []holdingView `json:"holdings"`
	TotalValue     float64       `json:"total_value"`
	TotalFormatted string        `json:"total_formatted"`
}

func toHoldingView(h domainportfolio.Holding) holdingView {
	return holdingView{
		ID:       h.ID.String(),
		CoinID:   h.CoinID,
		Name:     h.Name,
		Symbol:   h.Symbol,
		Amount:   h.Amount,
		Price:    h.Price,
		Value:    h.Value,
		Currency: h.Currency.String(),
	}
}

func toPortfolioView(holdings []domainportfolio.Holding, total float64) portfolioView {
	views := make([]holdingView, 0, len(holdings))
	currency := "usd"
	for _, h := range holdings {
		views = append(views, toHoldingView(h))
		currency = h.Currency.String()
	}
	return portfolioView{
		Holdings:       views,
		TotalValue:     total,
		TotalFormatted: format.Currency(total, strings.ToUpper(currency)),
	}
}

// getPortfolio lists holdings with the summed value
// @Summary      Get portfolio
// @Description  All holdings with their total value in the active currency
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  portfolioView
// @Failure      500  {object}  map[string]string
// @Router       /portfolio [get]
func (h *Handler) getPortfolio(c *gin.Context) {
	holdings, total, err := h.portfolio.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, toPortfolioView(holdings, total))
}

// addHolding adds a position priced at the current market price
// @Summary      Add holding
// @Description  Add a position valued at the coin's current price
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        holding  body      holdingPayload  true  "Holding data"
// @Success      201      {object}  holdingView
// @Failure      400      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /portfolio [post]
func (h *Handler) addHolding(c *gin.Context) {
	var payload holdingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	currency, err := domainportfolio.NewCurrency(defaultString(payload.Currency, "usd"))
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidCurrency)
		return
	}
	holding, err := h.portfolio.Add(c.Request.Context(), payload.CoinID, payload.Amount, currency)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, toHoldingView(*holding))
}

// removeHolding deletes a position
// @Summary      Remove holding
// @Description  Remove a position by id
// @Tags         portfolio
// @Produce      json
// @Param        id   path      string  true  "Holding UUID"
// @Success      204  "No Content"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /portfolio/{id} [delete]
func (h *Handler) removeHolding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, errMissingHolding)
		return
	}
	if err := h.portfolio.Remove(c.Request.Context(), id); err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// setPortfolioCurrency revalues every holding in a new currency
// @Summary      Set portfolio currency
// @Description  Re-fetch prices and recompute every holding in the new display currency
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        currency  body      currencyPayload  true  "Display currency"
// @Success      200       {object}  portfolioView
// @Failure      400       {object}  map[string]string
// @Failure      502       {object}  map[string]string
// @Router       /portfolio/currency [put]
func (h *Handler) setPortfolioCurrency(c *gin.Context) {
	var payload currencyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	currency, err := domainportfolio.NewCurrency(payload.Currency)
	if err != nil {
		writeError(c, http.StatusBadRequest, errInvalidCurrency)
		return
	}
	holdings, err := h.portfolio.SetCurrency(c.Request.Context(), currency)
	if err != nil {
		writeError(c, upstreamStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, toPortfolioView(holdings, domainportfolio.TotalValue(holdings)))
}

// Preference handlers

type preferencesView struct {
	Lang  string `json:"lang"`
	Theme string `json:"theme"`
}

// getPreferences returns the stored UI preferences
// @Summary      Get preferences
// @Description  Stored language and theme, with defaults when unset
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  preferencesView
// @Router       /preferences [get]
func (h *Handler) getPreferences(c *gin.Context) {
	ctx := c.Request.Context()
	view := preferencesView{Lang: "en", Theme: "dark"}
	if lang, err := h.portfolio.Preference(ctx, appportfolio.PrefLang); err == nil {
		view.Lang = lang
	}
	if theme, err := h.portfolio.Preference(ctx, appportfolio.PrefTheme); err == nil {
		view.Theme = theme
	}
	c.JSON(http.StatusOK, view)
}

// setPreferences stores the UI preferences
// @Summary      Set preferences
// @Description  Store language and/or theme
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        preferences  body      preferencesView  true  "Preferences"
// @Success      200          {object}  preferencesView
// @Failure      400          {object}  map[string]string
// @Router       /preferences [put]
func (h *Handler) setPreferences(c *gin.Context) {
	var payload preferencesView
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	ctx := c.Request.Context()
	if payload.Lang != "" {
		if err := h.portfolio.SetPreference(ctx, appportfolio.PrefLang, payload.Lang); err != nil {
			writeError(c, http.StatusInternalServerError, err)
			return
		}
	}
	if payload.Theme != "" {
		if err := h.portfolio.SetPreference(ctx, appportfolio.PrefTheme, payload.Theme); err != nil {
			writeError(c, http.StatusInternalServerError, err)
			return
		}
	}
	h.getPreferences(c)
}

// Helpers

func parseMarketsParams(c *gin.Context) (interfaces.MarketsParams, error) {
	params := interfaces.MarketsParams{
		VsCurrency: c.Query("vs_currency"),
		Order:      c.Query("order"),
	}
	if raw := c.Query("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage <= 0 {
			return params, fmt.Errorf("per_page must be a positive integer")
		}
		params.PerPage = perPage
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return params, fmt.Errorf("page must be a positive integer")
		}
		params.Page = page
	}
	for name, values := range c.Request.URL.Query() {
		switch name {
		case "vs_currency", "order", "per_page", "page":
			continue
		}
		if len(values) == 0 {
			continue
		}
		if params.Extra == nil {
			params.Extra = map[string]string{}
		}
		params.Extra[name] = values[0]
	}
	return params, nil
}

func parseDays(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, errInvalidDays
	}
	return days, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// upstreamStatus maps client errors onto HTTP statuses: validation
// failures are the caller's fault, failed upstream fetches are a bad
// gateway, anything else is internal.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, coingecko.ErrMissingCoinID),
		errors.Is(err, coingecko.ErrInvalidDays),
		errors.Is(err, appmarket.ErrMissingCoinID),
		errors.Is(err, appmarket.ErrInvalidDays),
		errors.Is(err, appportfolio.ErrMissingCoinID),
		errors.Is(err, appportfolio.ErrInvalidAmount):
		return http.StatusBadRequest
	case coingecko.IsFetchError(err), coingecko.IsParseError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			_ = h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err()
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
