package market

import (
	"context"
	"testing"
	"time"

	market "main/internal/domain/entity/market"
	"main/internal/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	coins   []market.Coin
	detail  *market.CoinDetail
	chart   *market.Chart
	candles []market.Candle
	err     error

	calls int
}

var _ interfaces.MarketDataProvider = (*stubProvider)(nil)

func (p *stubProvider) CoinsMarkets(ctx context.Context, params interfaces.MarketsParams) ([]market.Coin, error) {
	p.calls++
	return p.coins, p.err
}

func (p *stubProvider) CoinDetail(ctx context.Context, coinID string) (*market.CoinDetail, error) {
	p.calls++
	return p.detail, p.err
}

func (p *stubProvider) CoinMarketChart(ctx context.Context, coinID string, days int) (*market.Chart, error) {
	p.calls++
	return p.chart, p.err
}

func (p *stubProvider) CoinOhlc(ctx context.Context, coinID string, days int) ([]market.Candle, error) {
	p.calls++
	return p.candles, p.err
}

func TestService_ValidatesBeforeCallingProvider(t *testing.T) {
	provider := &stubProvider{}
	svc := NewService(provider)
	ctx := context.Background()

	_, err := svc.CoinDetail(ctx, "")
	assert.ErrorIs(t, err, ErrMissingCoinID)

	_, err = svc.CoinMarketChart(ctx, "", 7)
	assert.ErrorIs(t, err, ErrMissingCoinID)

	_, err = svc.CoinOhlc(ctx, "", 7)
	assert.ErrorIs(t, err, ErrMissingCoinID)

	_, err = svc.CoinOhlc(ctx, "bitcoin", 0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = svc.CoinOhlc(ctx, "bitcoin", -1)
	assert.ErrorIs(t, err, ErrInvalidDays)

	assert.Equal(t, 0, provider.calls)
}

func TestService_PassThrough(t *testing.T) {
	provider := &stubProvider{
		coins:  []market.Coin{{ID: "bitcoin"}},
		detail: &market.CoinDetail{ID: "bitcoin"},
		candles: []market.Candle{
			{Timestamp: 1, Open: 1, High: 2, Low: 1, Close: 2},
		},
	}
	svc := NewService(provider)
	ctx := context.Background()

	coins, err := svc.CoinsMarkets(ctx, interfaces.MarketsParams{})
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", coins[0].ID)

	detail, err := svc.CoinDetail(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", detail.ID)

	candles, err := svc.CoinOhlc(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.Len(t, candles, 1)
}

func TestService_CoinCandles(t *testing.T) {
	hour := time.Hour.Milliseconds()
	provider := &stubProvider{
		chart: &market.Chart{
			Prices: []market.PricePoint{
				{Timestamp: 0, Price: 100},
				{Timestamp: hour / 2, Price: 120},
				{Timestamp: 2 * hour, Price: 110},
			},
		},
	}
	svc := NewService(provider)

	candles, err := svc.CoinCandles(context.Background(), "bitcoin", 7, time.Hour)
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, 120.0, candles[0].Close)
	assert.Equal(t, 110.0, candles[1].Open)
}

func TestService_CoinCandles_EmptyChart(t *testing.T) {
	svc := NewService(&stubProvider{chart: &market.Chart{}})

	_, err := svc.CoinCandles(context.Background(), "bitcoin", 7, time.Hour)
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestService_CoinCandles_MissingID(t *testing.T) {
	provider := &stubProvider{}
	svc := NewService(provider)

	_, err := svc.CoinCandles(context.Background(), "", 7, time.Hour)
	assert.ErrorIs(t, err, ErrMissingCoinID)
	assert.Equal(t, 0, provider.calls)
}
