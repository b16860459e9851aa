// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/osamarehman/hex-docs/pkg/constants"
)

// RoundWhole rounds a currency amount to whole francs, half away from zero.
// This is the only rounding applied to a displayed monthly payment.
func RoundWhole(val float64) int64 {
	return int64(math.Round(val))
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// PercentToFraction converts a 0-100 percentage into a fraction.
func PercentToFraction(percentage float64) float64 {
	return percentage / constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * PercentToFraction(percentage)
}
