package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when the caller does not configure one.
const DefaultCurrencySymbol = "₱"

// FormatCurrency renders an amount as a currency string: symbol, comma
// thousands separators, exactly two decimal places. Rounding is half away
// from zero. Negative amounts carry a leading minus sign before the symbol.
func FormatCurrency(amount decimal.Decimal, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}

	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	parts := strings.SplitN(fixed, ".", 2)
	whole, frac := parts[0], parts[1]

	var b strings.Builder
	remainder := len(whole) % 3
	if remainder > 0 {
		b.WriteString(whole[:remainder])
	}
	for i := remainder; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(whole[i : i+3])
	}

	out := symbol + b.String() + "." + frac
	if negative {
		out = "-" + out
	}
	return out
}

// ParseCurrency parses a currency string produced by FormatCurrency, or any
// reasonable hand-typed variant: the currency symbol, comma separators, and
// surrounding whitespace are ignored. Parenthesized amounts are treated as
// negative.
func ParseCurrency(s string, symbol string) (decimal.Decimal, error) {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}

	cleaned := strings.TrimSpace(s)
	negative := false

	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = cleaned[1:]
	}

	cleaned = strings.ReplaceAll(cleaned, symbol, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount: %q", s)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}
