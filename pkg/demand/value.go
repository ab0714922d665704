package demand

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a numeric attribute as read from a data source.
// Raw keeps the source text so error messages can quote it.
type Value struct {
	Number float64
	Raw    string
	Valid  bool
}

// Number wraps a known numeric value.
func Number(f float64) Value {
	return Value{Number: f, Raw: strconv.FormatFloat(f, 'f', -1, 64), Valid: true}
}

// ParseValue converts an attribute value from a GeoJSON property, CSV cell
// or database column. Missing and non-numeric values are returned with
// Valid set to false.
func ParseValue(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case json.Number:
		return parseString(v.String())
	case string:
		return parseString(v)
	case []byte:
		return parseString(string(v))
	default:
		return Value{Raw: fmt.Sprint(v)}
	}
}

func parseString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Raw: s}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Value{Raw: s}
	}
	return Value{Number: f, Raw: s, Valid: true}
}

// checkPopulation returns nil when v is a usable population figure.
func checkPopulation(v Value) error {
	switch {
	case !v.Valid && v.Raw == "":
		return fmt.Errorf("%w: population is missing", ErrInvalidInput)
	case !v.Valid:
		return fmt.Errorf("%w: population %q is not numeric", ErrInvalidInput, v.Raw)
	case math.IsNaN(v.Number) || math.IsInf(v.Number, 0):
		return fmt.Errorf("%w: population %v is not finite", ErrInvalidInput, v.Number)
	case v.Number < 0:
		return fmt.Errorf("%w: population %v is negative", ErrInvalidInput, v.Number)
	}
	return nil
}
