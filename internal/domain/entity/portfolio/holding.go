package portfolio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyIDR Currency = "idr"
)

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyIDR:
		return true
	default:
		return false
	}
}

func NewCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency: %s", s)
	}
	return c, nil
}

// Holding is one user-entered portfolio position. Price and Value are
// denominated in Currency and captured at the time the position was added;
// both are recomputed when the active display currency changes.
type Holding struct {
	ID       uuid.UUID
	CoinID   string
	Name     string
	Symbol   string
	Amount   float64
	Price    float64
	Value    float64
	Currency Currency
	AddedAt  time.Time
}

// TotalValue sums the stored value of the given holdings.
func TotalValue(holdings []Holding) float64 {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}
	return total
}
