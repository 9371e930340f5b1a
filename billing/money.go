package billing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored as float64 with two-decimal precision. Arithmetic goes through decimal
// so that repeated payments like 0.1 + 0.2 settle to exactly 0.30.

func roundAmount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func addAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func mulAmount(rate float64, n int) float64 {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// Round rounds an amount to cents.
func Round(v float64) float64 {
	if !isFinite(v) {
		return v
	}
	return roundAmount(v)
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// ParseAmount accepts "12", "12.5" or " 12.50 " and rejects anything that is not a finite number.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, Validation("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Validation("invalid amount %q", s)
	}
	return d.Round(2).InexactFloat64(), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
