package interfaces

import (
	"context"

	market "main/internal/domain/entity/market"
)

// MarketsParams are the query parameters of the coin listing. Zero values
// are replaced with provider defaults by the client.
type MarketsParams struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	// Extra carries arbitrary pass-through query parameters.
	Extra map[string]string
}

// MarketDataProvider is the read-only contract the application layer uses
// to reach the upstream price API. Implementations resolve each call
// through snapshot and cache fallbacks before going to the network.
type MarketDataProvider interface {
	CoinsMarkets(ctx context.Context, params MarketsParams) ([]market.Coin, error)
	CoinDetail(ctx context.Context, coinID string) (*market.CoinDetail, error)
	CoinMarketChart(ctx context.Context, coinID string, days int) (*market.Chart, error)
	CoinOhlc(ctx context.Context, coinID string, days int) ([]market.Candle, error)
}
