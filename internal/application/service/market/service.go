package market

import (
	"context"
	"errors"
	"time"

	market "main/internal/domain/entity/market"
	"main/internal/domain/interfaces"
)

var (
	ErrMissingCoinID = errors.New("coin id is required")
	ErrInvalidDays   = errors.New("days must be positive")
	ErrEmptyChart    = errors.New("chart data is empty")
)

// Service fronts the market data provider with argument validation and the
// client-side series transformations the views need.
type Service struct {
	provider interfaces.MarketDataProvider
}

func NewService(provider interfaces.MarketDataProvider) *Service {
	return &Service{provider: provider}
}

func (s *Service) CoinsMarkets(ctx context.Context, params interfaces.MarketsParams) ([]market.Coin, error) {
	return s.provider.CoinsMarkets(ctx, params)
}

func (s *Service) CoinDetail(ctx context.Context, coinID string) (*market.CoinDetail, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	return s.provider.CoinDetail(ctx, coinID)
}

func (s *Service) CoinMarketChart(ctx context.Context, coinID string, days int) (*market.Chart, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	return s.provider.CoinMarketChart(ctx, coinID, days)
}

func (s *Service) CoinOhlc(ctx context.Context, coinID string, days int) ([]market.Candle, error) {
	if coinID == "" {
		return nil, ErrMissingCoinID
	}
	if days <= 0 {
		return nil, ErrInvalidDays
	}
	return s.provider.CoinOhlc(ctx, coinID, days)
}

// CoinCandles derives candles from the price-history series instead of
// the OHLC endpoint, bucketing into fixed windows (default one hour).
// This is what the candlestick view renders.
func (s *Service) CoinCandles(ctx context.Context, coinID string, days int, window time.Duration) ([]market.Candle, error) {
	chart, err := s.CoinMarketChart(ctx, coinID, days)
	if err != nil {
		return nil, err
	}
	if chart == nil || len(chart.Prices) == 0 {
		return nil, ErrEmptyChart
	}
	return market.Resample(chart.Prices, window), nil
}
