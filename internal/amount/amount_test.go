// internal/amount/amount_test.go
package amount

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finflow-ledger/internal/domain"
)

func TestToAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		fallback float64
		want     float64
	}{
		{"shekel with separators", "₪1,234.56", 0, 1234.56},
		{"nil uses fallback", nil, 7, 7},
		{"empty string uses fallback", "", 3, 3},
		{"letters only", "abc", 5, 5},
		{"dollar amount", "$1,000", 0, 1000},
		{"leading plus", "+20", 0, 20},
		{"negative string", "-50", 0, -50},
		{"apostrophe separators", "21'830.00", 0, 21830},
		{"two decimal points", "1.2.3", 9, 9},
		{"sign only", "-", 4, 4},
		{"float64", 42.5, 0, 42.5},
		{"int", 12, 0, 12},
		{"int64", int64(-8), 0, -8},
		{"float32", float32(0.5), 0, 0.5},
		{"decimal", decimal.RequireFromString("15420.50"), 0, 15420.5},
		{"json number", json.Number("99.99"), 0, 99.99},
		{"json number exponent", json.Number("1e3"), 0, 1000},
		{"NaN uses fallback", math.NaN(), 1, 1},
		{"Inf uses fallback", math.Inf(1), 2, 2},
		{"unsupported type", struct{}{}, 6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToAmount(tt.input, tt.fallback))
		})
	}
}

func TestToAmount_Idempotent(t *testing.T) {
	inputs := []any{"₪1,234.56", nil, "", "-0.01", 100, "garbage", math.NaN(), "+3.5", json.Number("7")}
	for _, in := range inputs {
		once := Amount(in)
		assert.Equal(t, once, Amount(once), "re-normalizing %v must be a no-op", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₪1,234.56", FormatAmount(1234.56))
	assert.Equal(t, "₪0.00", FormatAmount(nil))
	assert.Equal(t, "₪0.00", FormatAmount(math.NaN()))
	assert.Equal(t, "-₪2,340.75", FormatAmount(-2340.75))
	assert.Equal(t, "₪1,000,000.00", FormatAmount(1000000))
	assert.Equal(t, "₪500.00", FormatAmount("500"))
	assert.Equal(t, "₪0.10", FormatAmount(0.1))
}

func TestNormalizeAccountSet(t *testing.T) {
	got := NormalizeAccountSet(map[string]any{
		"checking": "₪15,420.50",
		"savings":  8750.25,
	})
	assert.Equal(t, domain.AccountBalances{Checking: 15420.50, Savings: 8750.25, Credit: 0}, got)

	assert.Equal(t, domain.AccountBalances{}, NormalizeAccountSet(nil))
	assert.Equal(t, domain.AccountBalances{Credit: -2340.75}, NormalizeAccountSet(map[string]any{"credit": "-2,340.75", "checking": "n/a"}))
}

func TestNormalize_ReplacesNonFinite(t *testing.T) {
	got := Normalize(domain.AccountBalances{Checking: math.NaN(), Savings: 1, Credit: math.Inf(-1)})
	assert.Equal(t, domain.AccountBalances{Savings: 1}, got)
}

func TestAddSub(t *testing.T) {
	assert.Equal(t, 0.3, Add(0.1, 0.2))
	assert.Equal(t, 14920.5, Sub(15420.5, 500))
	assert.Equal(t, 0.1, Sub(0.3, 0.2))
}
