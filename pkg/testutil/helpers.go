// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/osamarehman/hex-docs/internal/offer"
)

// FindQuote finds a quote by slot in the quotes slice, ignoring case.
// Returns a pointer to the quote if found, nil otherwise.
func FindQuote(quotes []offer.Quote, slot string) *offer.Quote {
	for i := range quotes {
		if strings.EqualFold(quotes[i].Slot, slot) {
			return &quotes[i]
		}
	}
	return nil
}

// LoadProducts reads and decodes a getCalculation response fixture.
func LoadProducts(tb testing.TB, path string) []offer.Product {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("failed to read products fixture %s: %v", path, err)
	}
	products, err := offer.DecodeProducts(data)
	if err != nil {
		tb.Fatalf("failed to decode products fixture %s: %v", path, err)
	}
	return products
}
