// internal/amount/amount.go

// Package amount coerces loosely typed balance and amount values into float64
// and renders them back for display. Every function here is total: bad input
// degrades to a fallback instead of failing.
package amount

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"finflow-ledger/internal/domain"
)

// CurrencySymbol is prefixed to every formatted amount.
const CurrencySymbol = "₪"

var printer = message.NewPrinter(language.English)

// ToAmount converts v into a float64. Strings may carry currency glyphs,
// thousands separators and a leading sign; everything except digits, signs
// and the decimal point is stripped before parsing. Nil, empty, unparsable,
// NaN and infinite inputs yield fallback.
func ToAmount(v any, fallback float64) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return fallback
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case decimal.Decimal:
		f = x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return fallback
		}
		f = x.InexactFloat64()
	case json.Number:
		// Exponent forms like 1e3 are valid JSON numbers; parse them before stripping.
		d, err := decimal.NewFromString(string(x))
		if err != nil {
			return parseString(string(x), fallback)
		}
		f = d.InexactFloat64()
	case string:
		return parseString(x, fallback)
	case *string:
		if x == nil {
			return fallback
		}
		return parseString(*x, fallback)
	case *float64:
		if x == nil {
			return fallback
		}
		f = *x
	case fmt.Stringer:
		return parseString(x.String(), fallback)
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// Amount is ToAmount with a zero fallback.
func Amount(v any) float64 {
	return ToAmount(v, 0)
}

func parseString(s string, fallback float64) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			return r
		}
		return -1
	}, s)
	cleaned = strings.TrimPrefix(cleaned, "+")
	if cleaned == "" {
		return fallback
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return fallback
	}
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// FormatAmount renders v with two decimals, thousands separators and a
// leading currency symbol, e.g. "₪1,234.56" or "-₪2,340.75".
func FormatAmount(v any) string {
	f := Amount(v)
	rounded := decimal.NewFromFloat(f).Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	return sign + CurrencySymbol + printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// NormalizeAccountSet reads the three known balance fields from raw,
// defaulting anything missing or malformed to zero.
func NormalizeAccountSet(raw map[string]any) domain.AccountBalances {
	if raw == nil {
		return domain.AccountBalances{}
	}
	return domain.AccountBalances{
		Checking: Amount(raw["checking"]),
		Savings:  Amount(raw["savings"]),
		Credit:   Amount(raw["credit"]),
	}
}

// Normalize replaces any non-finite balance with zero.
func Normalize(a domain.AccountBalances) domain.AccountBalances {
	return domain.AccountBalances{
		Checking: Amount(a.Checking),
		Savings:  Amount(a.Savings),
		Credit:   Amount(a.Credit),
	}
}

// Add returns a+b computed in decimal to avoid binary rounding drift.
func Add(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return a + b
	}
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// Sub returns a-b computed in decimal.
func Sub(a, b float64) float64 {
	if !finite(a) || !finite(b) {
		return a - b
	}
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
