package offer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/osamarehman/hex-docs/internal/metrics"
	"github.com/osamarehman/hex-docs/pkg/annuity"
	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/format"
	"github.com/osamarehman/hex-docs/pkg/mathutil"
	"go.uber.org/zap"
)

// Mode distinguishes the catalog figure from the customer's own quote.
type Mode string

const (
	// ModeCatalog uses fixed terms for every offered product.
	ModeCatalog Mode = "catalog"
	// ModeInteractive uses customer-chosen terms for the selected product.
	ModeInteractive Mode = "interactive"
)

var (
	// ErrNoProducts is returned when there is nothing to quote.
	ErrNoProducts = errors.New("no products to quote")
	// ErrUnknownSlot is returned for a selection outside the offered products.
	ErrUnknownSlot = errors.New("unknown product slot")
)

// Terms are the financing terms applied to a product.
type Terms struct {
	DownPaymentPercent float64 `json:"downPaymentPercent" yaml:"downPaymentPercent"`
	TermMonths         int     `json:"termMonths" yaml:"termMonths"`
}

// Selection names the product the customer picked and the terms they chose.
type Selection struct {
	Slot  string
	Terms Terms
}

// Display holds the formatted figures shown to the customer.
type Display struct {
	TotalPrice     string `json:"totalPrice"`
	DownPayment    string `json:"downPayment"`
	MonthlyPayment string `json:"monthlyPayment"`
}

// Quote is the monthly payment for one product.
type Quote struct {
	Slot         string         `json:"slot"`
	Mode         Mode           `json:"mode"`
	Manufacturer string         `json:"manufacturer,omitempty"`
	ProductType  string         `json:"productType,omitempty"`
	Terms        Terms          `json:"terms"`
	Input        annuity.Input  `json:"input"`
	Result       annuity.Result `json:"result"`
	Display      Display        `json:"display"`
	Error        string         `json:"error,omitempty"`
}

// CatalogResult holds one quote per offered product.
type CatalogResult struct {
	Terms  Terms   `json:"terms"`
	Quotes []Quote `json:"quotes"`
}

// Failed reports whether any product could not be quoted.
func (c CatalogResult) Failed() bool {
	for _, q := range c.Quotes {
		if q.Error != "" {
			return true
		}
	}
	return false
}

// SlotForIndex returns the slot letter of the product at index i.
func SlotForIndex(i int) (string, bool) {
	if i < 0 || i >= len(constants.ProductSlots) {
		return "", false
	}
	return constants.ProductSlots[i], true
}

// IndexForSlot returns the product index of a slot letter.
func IndexForSlot(slot string) (int, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(slot))
	for i, s := range constants.ProductSlots {
		if s == normalized {
			return i, true
		}
	}
	return 0, false
}

// BuildInput assembles the calculation input of product under terms.
// Missing cost-rate fields count as zero.
func BuildInput(product Product, terms Terms) annuity.Input {
	numbers := product.CalculationNumbers
	return annuity.Input{
		TotalCost:                 product.TotalPrice.Or(0),
		DownPaymentRatio:          mathutil.PercentToFraction(terms.DownPaymentPercent),
		TermMonths:                terms.TermMonths,
		AnnualInterestRatePercent: numbers.InterestRate.Or(0),
		ServiceFeePercent:         numbers.ServiceFee.Or(0),
		MaintenanceAbsolute:       numbers.Maintenance.Or(0),
		EnergyManagementAbsolute:  numbers.EnergyManagement.Or(0),
		InsuranceRatePercent:      numbers.RatInsurance.Or(0),
		TaxRatePercent:            numbers.Tax.Or(0),
	}
}

// Calculator quotes products in both modes.
type Calculator struct {
	logger  *zap.Logger
	catalog Terms
}

// NewCalculator creates a calculator whose catalog quotes use catalogTerms.
func NewCalculator(logger *zap.Logger, catalogTerms Terms) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, catalog: catalogTerms}
}

// CatalogTerms returns the fixed terms of catalog quotes.
func (c *Calculator) CatalogTerms() Terms {
	return c.catalog
}

// Catalog quotes every offered product with the catalog terms. A product
// that cannot be quoted carries an error instead of failing the catalog.
func (c *Calculator) Catalog(products []Product) (CatalogResult, error) {
	return c.CatalogWithTerms(products, c.catalog)
}

// CatalogWithTerms is Catalog with explicit terms.
func (c *Calculator) CatalogWithTerms(products []Product, terms Terms) (CatalogResult, error) {
	if len(products) == 0 {
		return CatalogResult{}, ErrNoProducts
	}

	result := CatalogResult{Terms: terms}
	for i, product := range products {
		slot, ok := SlotForIndex(i)
		if !ok {
			c.logger.Warn(fmt.Sprintf("ignoring product at index %d, only %d slots available", i, len(constants.ProductSlots)),
				zap.String("op", "offer.Catalog"),
			)
			break
		}

		quote, err := c.quote(slot, ModeCatalog, product, terms)
		if err != nil {
			c.logger.Warn("failed to quote product",
				zap.String("op", "offer.Catalog"),
				zap.String("slot", slot),
				zap.Error(err),
			)
			quote.Error = err.Error()
		}
		result.Quotes = append(result.Quotes, quote)
	}

	c.logger.Debug("catalog quoted",
		zap.String("op", "offer.Catalog"),
		zap.Int("products", len(result.Quotes)),
		zap.Int("termMonths", terms.TermMonths),
	)
	return result, nil
}

// Interactive quotes the selected product with the customer's terms.
func (c *Calculator) Interactive(products []Product, selection Selection) (Quote, error) {
	if len(products) == 0 {
		return Quote{}, ErrNoProducts
	}

	idx, ok := IndexForSlot(selection.Slot)
	if !ok || idx >= len(products) {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownSlot, selection.Slot)
	}

	slot := constants.ProductSlots[idx]
	quote, err := c.quote(slot, ModeInteractive, products[idx], selection.Terms)
	if err != nil {
		return Quote{}, fmt.Errorf("product %s: %w", slot, err)
	}

	c.logger.Debug("interactive quote",
		zap.String("op", "offer.Interactive"),
		zap.String("slot", slot),
		zap.Float64("downPaymentPercent", selection.Terms.DownPaymentPercent),
		zap.Int("termMonths", selection.Terms.TermMonths),
		zap.Int64("monthlyPayment", quote.Result.FinalMonthlyPayment),
	)
	return quote, nil
}

func (c *Calculator) quote(slot string, mode Mode, product Product, terms Terms) (Quote, error) {
	quote := Quote{
		Slot:         slot,
		Mode:         mode,
		Manufacturer: product.HeatPump.Manufacturer,
		ProductType:  product.HeatPump.ProductType,
		Terms:        terms,
		Input:        BuildInput(product, terms),
	}

	result, err := annuity.Compute(quote.Input)
	if err != nil {
		metrics.ObserveQuote(string(mode), metrics.ResultError)
		return quote, err
	}
	metrics.ObserveQuote(string(mode), metrics.ResultSuccess)

	quote.Result = result
	quote.Display = Display{
		TotalPrice:     format.CHF(mathutil.RoundWhole(quote.Input.TotalCost)),
		DownPayment:    format.SwissRounded(result.DownPayment),
		MonthlyPayment: format.CHF(result.FinalMonthlyPayment),
	}
	return quote, nil
}
