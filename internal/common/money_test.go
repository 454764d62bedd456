package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		symbol string
		want   string
	}{
		{name: "small amount", amount: "5.25", want: "₱5.25"},
		{name: "thousands separator", amount: "1234567.8", want: "₱1,234,567.80"},
		{name: "exact thousands", amount: "1000", want: "₱1,000.00"},
		{name: "zero", amount: "0", want: "₱0.00"},
		{name: "negative", amount: "-42.5", want: "-₱42.50"},
		{name: "rounds half away from zero", amount: "2.005", want: "₱2.01"},
		{name: "custom symbol", amount: "99.99", symbol: "$", want: "$99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			assert.Equal(t, tt.want, FormatCurrency(amount, tt.symbol))
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain number", input: "123.45", want: "123.45"},
		{name: "with symbol and commas", input: "₱1,234,567.80", want: "1234567.8"},
		{name: "parenthesized negative", input: "(₱500.00)", want: "-500"},
		{name: "minus negative", input: "-₱42.50", want: "-42.5"},
		{name: "surrounding whitespace", input: "  ₱7.00 ", want: "7"},
		{name: "empty", input: "", wantErr: true},
		{name: "symbol only", input: "₱", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.input, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestCurrencyRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "5.25", "-42.50", "1234567.89", "999999999.99"} {
		amount := decimal.RequireFromString(raw)
		formatted := FormatCurrency(amount, "")
		parsed, err := ParseCurrency(formatted, "")
		require.NoError(t, err)
		assert.True(t, amount.Equal(parsed), "round trip of %s gave %s", raw, parsed)
	}
}
