// Package offer turns the products returned by the heating-offer API into
// monthly payment quotes, once per product for the catalog and again for the
// product the customer selected.
package offer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/osamarehman/hex-docs/pkg/input"
)

// Number is a numeric API field that may arrive as a JSON number, a
// formatted string or null.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a valid Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = Number{}
		return nil
	}

	var raw any
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("decode number: %w", err)
	}

	value, err := input.Number(raw)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = NewNumber(value)
	return nil
}

// MarshalJSON writes null for invalid numbers.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// Or returns the value, or def when the field was missing.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Product is one offered heating system as returned by getCalculation.
type Product struct {
	TotalPrice         Number             `json:"totalPrice"`
	TotalSalesPrice    Number             `json:"totalSalesPrice"`
	HeatPump           HeatPump           `json:"heatPump"`
	Boiler             Boiler             `json:"boiler"`
	CalculationNumbers CalculationNumbers `json:"calculationNumbers"`
}

// HeatPump describes the heat pump of a product.
type HeatPump struct {
	ProductType  string `json:"productType"`
	Manufacturer string `json:"manufactorer"`
	Subsidy      Number `json:"forderung"`
	Slogan       string `json:"slogan,omitempty"`
	Loudness     any    `json:"loudness,omitempty"`
	MaxOutput    any    `json:"max_output,omitempty"`
	SCOP         any    `json:"scop,omitempty"`
	Image        string `json:"image,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Boiler describes the hot water boiler of a product.
type Boiler struct {
	Type any `json:"type,omitempty"`
}

// CalculationNumbers are the per-product cost-rate parameters. Percent
// fields use the 0-100 scale; maintenance and energy management are CHF per
// month.
type CalculationNumbers struct {
	ServiceFee       Number `json:"serviceFee"`
	Maintenance      Number `json:"maintance"`
	EnergyManagement Number `json:"energyManagement"`
	RatInsurance     Number `json:"ratInsurance"`
	InterestRate     Number `json:"interestRate"`
	Tax              Number `json:"tax"`
}

// DecodeProducts parses a getCalculation response body.
func DecodeProducts(data []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}
