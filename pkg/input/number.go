// Package input converts loosely typed form and API values into numbers.
package input

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/osamarehman/hex-docs/pkg/mathutil"
	"github.com/spf13/cast"
)

var nonNumeric = regexp.MustCompile(`[^0-9.-]+`)

// MissingInputError reports a field that could not be read as a number.
type MissingInputError struct {
	Field string
	Value any
}

func (e *MissingInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("missing or non-numeric input %q", fmt.Sprint(e.Value))
	}
	return fmt.Sprintf("missing or non-numeric input for %s: %q", e.Field, fmt.Sprint(e.Value))
}

// Number reads raw as a float64. Strings that do not parse as a number
// (exponents included) are stripped of everything except digits, '.' and
// '-' and parsed again, so "CHF 12'345" reads as 12345.
func Number(raw any) (float64, error) {
	return Field("", raw)
}

// Field is Number with the field name recorded in the error.
func Field(name string, raw any) (float64, error) {
	missing := &MissingInputError{Field: name, Value: raw}

	var value float64
	switch v := raw.(type) {
	case nil:
		return 0, missing
	case string:
		trimmed := strings.TrimSpace(v)
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err == nil {
			value = parsed
			break
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, missing
		}
		cleaned := nonNumeric.ReplaceAllString(trimmed, "")
		if cleaned == "" {
			return 0, missing
		}
		parsed, err = cast.ToFloat64E(cleaned)
		if err != nil {
			return 0, missing
		}
		value = parsed
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, missing
		}
		value = parsed
	case bool:
		return 0, missing
	default:
		parsed, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, missing
		}
		value = parsed
	}

	if !mathutil.IsFinite(value) {
		return 0, missing
	}
	return value, nil
}

// Int reads raw as a whole number. Fractional values are rejected.
func Int(name string, raw any) (int, error) {
	value, err := Field(name, raw)
	if err != nil {
		return 0, err
	}
	if value != float64(int(value)) {
		return 0, &MissingInputError{Field: name, Value: raw}
	}
	return int(value), nil
}
