package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Epsilon is the currency rounding tolerance used for every "is this settled" check.
var Epsilon = decimal.RequireFromString("0.01")

// IsSettled reports whether a remaining amount is within the rounding tolerance of zero.
func IsSettled(remaining decimal.Decimal) bool {
	return remaining.LessThanOrEqual(Epsilon)
}

// Exceeds reports whether amount is larger than limit by more than the tolerance.
func Exceeds(amount, limit decimal.Decimal) bool {
	return amount.Sub(limit).GreaterThan(Epsilon)
}

// ParseAmount parses a user or import supplied amount. Unparseable input yields an invalid
// NullDecimal rather than an error so the record can still be displayed.
func ParseAmount(s string) decimal.NullDecimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ValueOrZero returns the decimal when valid, zero otherwise.
func ValueOrZero(n decimal.NullDecimal) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	return n.Decimal
}
