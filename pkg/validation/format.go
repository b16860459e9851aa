// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/osamarehman/hex-docs/pkg/constants"
)

// MaxTermMonths is the longest financing term offered.
const MaxTermMonths = 240

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateTerms checks a down payment percentage and term in months.
func ValidateTerms(downPaymentPercent float64, termMonths int) error {
	if downPaymentPercent < 0 || downPaymentPercent > constants.PercentageMultiplier {
		return fmt.Errorf("down payment must be between 0 and 100 percent, got %v", downPaymentPercent)
	}
	if termMonths <= 0 || termMonths > MaxTermMonths {
		return fmt.Errorf("term must be between 1 and %d months, got %d", MaxTermMonths, termMonths)
	}
	return nil
}

// ValidateAddressQuery reports whether an address query is long enough to
// send upstream.
func ValidateAddressQuery(query string) bool {
	return len([]rune(strings.TrimSpace(query))) >= constants.MinAddressQueryLength
}
