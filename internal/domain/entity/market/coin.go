package market

// Coin is one row of the paginated /coins/markets listing. The upstream API
// computes all aggregates (market cap, 24h change); we only carry them.
type Coin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank,omitempty"`
	TotalVolume              float64  `json:"total_volume,omitempty"`
}

// CoinDetail is the full per-coin payload from /coins/{id}. It is fetched
// fresh per coin id and never merged with the listing rows.
type CoinDetail struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"`
	Name       string     `json:"name"`
	Image      CoinImage  `json:"image"`
	MarketData MarketData `json:"market_data"`
}

type CoinImage struct {
	Thumb string `json:"thumb,omitempty"`
	Small string `json:"small,omitempty"`
	Large string `json:"large"`
}

// MarketData keys prices by vs_currency code ("usd", "idr", ...), matching
// the provider's nested JSON shape.
type MarketData struct {
	CurrentPrice map[string]float64 `json:"current_price"`
	MarketCap    map[string]float64 `json:"market_cap"`
	High24h      map[string]float64 `json:"high_24h"`
	Low24h       map[string]float64 `json:"low_24h"`
}

// Price returns the current price in the given vs_currency, or false when
// the provider did not quote that currency.
func (m MarketData) Price(currency string) (float64, bool) {
	price, ok := m.CurrentPrice[currency]
	return price, ok
}
