package currency

import "strings"

// USD is the base currency every upstream value is denominated in.
const USD = "usd"

// Static conversion table. Rates are intentionally fixed: no live exchange
// rate service is consulted anywhere in this system.
var staticRates = map[string]float64{
	"idr": 15500,
}

// RateProvider resolves a conversion rate from USD to the given currency.
// The second return value reports whether the currency is known.
type RateProvider func(currency string) (float64, bool)

// StaticRates is the default provider backed by the fixed table above.
func StaticRates(currency string) (float64, bool) {
	rate, ok := staticRates[strings.ToLower(currency)]
	return rate, ok
}

// Converter turns USD-denominated amounts into a display currency.
type Converter struct {
	rates RateProvider
}

func NewConverter(rates RateProvider) *Converter {
	if rates == nil {
		rates = StaticRates
	}
	return &Converter{rates: rates}
}

// Convert multiplies amountUSD by the target currency's rate. USD and any
// currency the provider does not know pass through unchanged.
func (c *Converter) Convert(amountUSD float64, target string) float64 {
	if strings.EqualFold(target, USD) {
		return amountUSD
	}
	rate, ok := c.rates(target)
	if !ok {
		return amountUSD
	}
	return amountUSD * rate
}
