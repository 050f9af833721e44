// Package format holds the pure display-formatting helpers shared by the
// HTTP layer. All functions are side-effect free; missing upstream values
// (JSON null) arrive as nil pointers and render as "N/A".
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leekchan/accounting"
)

const missing = "N/A"

var formatters = map[string]*accounting.Accounting{
	"USD": accounting.DefaultAccounting("$", 2),
	"IDR": newIDRFormatter(),
}

func newIDRFormatter() *accounting.Accounting {
	a := accounting.DefaultAccounting("Rp", 0)
	a.Thousand = "."
	a.Decimal = ","
	return a
}

// Currency renders value as a currency string for the given ISO code.
// Codes without a configured formatter fall back to "CODE value".
func Currency(value float64, code string) string {
	if code == "" {
		code = "USD"
	}
	code = strings.ToUpper(code)
	if a, ok := formatters[code]; ok {
		return a.FormatMoneyFloat64(value)
	}
	return code + " " + strconv.FormatFloat(value, 'f', -1, 64)
}

// Number renders large magnitudes in compact form ($1.5M, $2.3B, $4.1T)
// and falls back to a full USD currency string below one million. Zero is
// a valid value, not a missing one.
func Number(value *float64) string {
	if value == nil {
		return missing
	}
	v := *value
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	}
	return Currency(v, "USD")
}

// Percentage renders a signed percentage with two decimals. Non-negative
// values carry an explicit leading plus.
func Percentage(value *float64) string {
	if value == nil {
		return missing
	}
	sign := ""
	if *value >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, *value)
}

// Date renders a millisecond timestamp as a short month/day/year date.
func Date(timestampMillis int64) string {
	return time.UnixMilli(timestampMillis).UTC().Format("Jan 2, 2006")
}
