package hexapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/input"
)

// Text is a field the API sends either as a string or as a number.
type Text string

// UnmarshalJSON accepts strings, numbers and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", trimmed)
	}
	*t = Text(n.String())
	return nil
}

// Address is one autocomplete suggestion.
type Address struct {
	EingangID      Text `json:"eingang_id"`
	StreetName     Text `json:"street_name"`
	HouseNumber    Text `json:"house_number"`
	PostalCode     Text `json:"postal_code"`
	PostalCodeName Text `json:"postal_code_name"`
}

// Label renders the suggestion as shown in the dropdown.
func (a Address) Label() string {
	return fmt.Sprintf("%s %s %s %s", a.StreetName, a.HouseNumber, a.PostalCodeName, a.PostalCode)
}

// HouseInfo is the building data used to prefill the offer form.
type HouseInfo struct {
	DkodeE                  offer.Number `json:"dkodeE"`
	DkodeN                  offer.Number `json:"dkodeN"`
	StreetName              Text         `json:"street_name"`
	HouseNumber             Text         `json:"house_number"`
	PostalCode              Text         `json:"postal_code"`
	PostalCodeName          Text         `json:"postal_code_name"`
	Genh1Name               Text         `json:"genh1Name"`
	Gwaerzh1Name            Text         `json:"gwaerzh1Name"`
	Gwaerzw1Name            Text         `json:"gwaerzw1Name"`
	Warea                   offer.Number `json:"warea"`
	Wazim                   offer.Number `json:"wazim"`
	Wbauj                   offer.Number `json:"wbauj"`
	RecommendedHeatingUsage offer.Number `json:"recommendedHeatingUsage"`
}

// FullAddress joins the non-empty address parts.
func (h HouseInfo) FullAddress() string {
	var parts []string
	for _, part := range []Text{h.StreetName, h.HouseNumber, h.PostalCode, h.PostalCodeName} {
		if trimmed := strings.TrimSpace(string(part)); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// HasCoordinates reports whether both Swiss grid coordinates are present.
func (h HouseInfo) HasCoordinates() bool {
	return h.DkodeE.Or(0) != 0 && h.DkodeN.Or(0) != 0
}

// CalculationRequest carries the offer form submitted to getCalculation.
type CalculationRequest struct {
	EingangID              string `json:"eingangId"`
	NewHeatingPlace        string `json:"newHeatingPlace"`
	Genw1                  string `json:"genw1"`
	Genh1                  string `json:"genh1"`
	Gwaerzh1Name           string `json:"gwaerzh1Name"`
	Gwaerzw1Name           string `json:"gwaerzw1Name"`
	Warea                  string `json:"warea"`
	Wazim                  string `json:"wazim"`
	Wbauj                  string `json:"wbauj"`
	Ruckbau                string `json:"ruckbau"`
	EnergyManagement       string `json:"energyManagement"`
	ExtraService           string `json:"extraService"`
	WaterBoiler            string `json:"waterBoiler"`
	People                 string `json:"people"`
	DistanceToHeatingPlace string `json:"distanceToHeatingPlace"`
	KwhPerYear             string `json:"kwhPerYear"`
	OilUsageLiters         string `json:"oilUsageLiters"`
}

type formField struct {
	name  string
	value string
}

func (r CalculationRequest) fields() []formField {
	return []formField{
		{"eingangId", r.EingangID},
		{"newHeatingPlace", r.NewHeatingPlace},
		{"genw1", r.Genw1},
		{"genh1", r.Genh1},
		{"gwaerzh1Name", r.Gwaerzh1Name},
		{"gwaerzw1Name", r.Gwaerzw1Name},
		{"warea", r.Warea},
		{"wazim", r.Wazim},
		{"wbauj", r.Wbauj},
		{"ruckbau", r.Ruckbau},
		{"energyManagement", r.EnergyManagement},
		{"extraService", r.ExtraService},
		{"waterBoiler", r.WaterBoiler},
		{"people", r.People},
		{"distanceToHeatingPlace", r.DistanceToHeatingPlace},
		{"kwhPerYear", r.KwhPerYear},
		{"oilUsageLiters", r.OilUsageLiters},
	}
}

// Validate checks the fields getCalculation cannot do without.
func (r CalculationRequest) Validate() error {
	required := map[string]string{
		"eingangId":       r.EingangID,
		"newHeatingPlace": r.NewHeatingPlace,
		"genh1":           r.Genh1,
		"gwaerzh1Name":    r.Gwaerzh1Name,
		"warea":           r.Warea,
		"wbauj":           r.Wbauj,
	}

	var missing []string
	for _, f := range r.fields() {
		if value, ok := required[f.name]; ok && strings.TrimSpace(value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}

	var errs []error
	for _, name := range []string{"warea", "wbauj"} {
		value, err := input.Field(name, required[name])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, value))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}
