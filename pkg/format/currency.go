// Package format renders amounts the Swiss way, e.g. "CHF 12'345".
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/mathutil"
)

// CHF returns a whole-franc amount with the currency label (e.g., "CHF 12'345").
func CHF(amount int64) string {
	return constants.CurrencyLabel + " " + Swiss(amount)
}

// Swiss returns a whole-franc amount with apostrophe separators (e.g., "-12'345").
func Swiss(amount int64) string {
	if amount < 0 {
		// Avoid negating math.MinInt64.
		return "-" + group(strings.TrimPrefix(strconv.FormatInt(amount, 10), "-"))
	}
	return group(strconv.FormatInt(amount, 10))
}

// SwissRounded rounds amount to whole francs and groups it.
func SwissRounded(amount float64) string {
	return Swiss(mathutil.RoundWhole(amount))
}

// SwissDecimal returns an amount with two decimals and separators (e.g., "1'234.50").
func SwissDecimal(amount float64) string {
	formatted := fmt.Sprintf("%.2f", math.Abs(amount))
	parts := strings.SplitN(formatted, ".", 2)
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	sign := ""
	if amount < 0 && formatted != "0.00" {
		sign = "-"
	}
	return sign + group(parts[0]) + "." + decPart
}

func group(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}

	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteRune(constants.ThousandsSeparator)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
