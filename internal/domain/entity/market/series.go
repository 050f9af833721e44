package market

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultCandleWindow is the bucket size used when deriving candles from a
// raw price series.
const DefaultCandleWindow = time.Hour

// PricePoint is one sample of a price-history series. On the wire it is a
// two-element array: [timestampMillis, price].
type PricePoint struct {
	Timestamp int64
	Price     float64
}

func (p PricePoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Timestamp), p.Price})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var tuple []float64
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) < 2 {
		return fmt.Errorf("price point: expected [timestamp, price], got %d elements", len(tuple))
	}
	p.Timestamp = int64(tuple[0])
	p.Price = tuple[1]
	return nil
}

// Chart is the /coins/{id}/market_chart payload. Prices are ordered
// ascending by timestamp.
type Chart struct {
	Prices       []PricePoint `json:"prices"`
	MarketCaps   []PricePoint `json:"market_caps,omitempty"`
	TotalVolumes []PricePoint `json:"total_volumes,omitempty"`
}

// Candle is one OHLC interval. The /coins/{id}/ohlc endpoint returns it as
// a five-element array: [timestampMillis, open, high, low, close].
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([5]float64{float64(c.Timestamp), c.Open, c.High, c.Low, c.Close})
}

func (c *Candle) UnmarshalJSON(data []byte) error {
	var tuple []float64
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) < 5 {
		return fmt.Errorf("candle: expected [timestamp, o, h, l, c], got %d elements", len(tuple))
	}
	c.Timestamp = int64(tuple[0])
	c.Open = tuple[1]
	c.High = tuple[2]
	c.Low = tuple[3]
	c.Close = tuple[4]
	return nil
}

// Resample buckets an ascending price series into fixed windows and emits
// one candle per window. Window boundaries are anchored at the first sample
// of each bucket, not at a wall-clock grid. The trailing partial window is
// emitted as well.
func Resample(prices []PricePoint, window time.Duration) []Candle {
	if len(prices) == 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultCandleWindow
	}
	windowMillis := window.Milliseconds()

	current := Candle{
		Timestamp: prices[0].Timestamp,
		Open:      prices[0].Price,
		High:      prices[0].Price,
		Low:       prices[0].Price,
		Close:     prices[0].Price,
	}

	var candles []Candle
	for _, point := range prices[1:] {
		if point.Timestamp-current.Timestamp > windowMillis {
			candles = append(candles, current)
			current = Candle{
				Timestamp: point.Timestamp,
				Open:      point.Price,
				High:      point.Price,
				Low:       point.Price,
				Close:     point.Price,
			}
			continue
		}
		if point.Price > current.High {
			current.High = point.Price
		}
		if point.Price < current.Low {
			current.Low = point.Price
		}
		current.Close = point.Price
	}
	return append(candles, current)
}
