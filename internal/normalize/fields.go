package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMissingPrice is returned when a raw price is absent or carries no positive amount.
var ErrMissingPrice = errors.New("missing or invalid price")

var (
	firstNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	leadNumber  = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)
)

// Price converts a raw price into whole dollars. Strings such as
// "$4,400/mo" are reduced to their first run of digits.
func Price(raw interface{}) (int, error) {
	var v float64
	switch p := raw.(type) {
	case nil:
		return 0, ErrMissingPrice
	case string:
		m := firstNumber.FindString(strings.ReplaceAll(p, ",", ""))
		if m == "" {
			return 0, ErrMissingPrice
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, ErrMissingPrice
		}
		v = f
	default:
		f, ok := number(raw)
		if !ok {
			return 0, ErrMissingPrice
		}
		v = f
	}

	price := int(v)
	if price <= 0 {
		return 0, ErrMissingPrice
	}
	return price, nil
}

// Beds returns the bedroom count, or nil when the value is absent or unusable.
func Beds(raw interface{}) *int {
	v, ok := lenient(raw)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// Baths returns the bathroom count, keeping halves.
func Baths(raw interface{}) *float64 {
	v, ok := lenient(raw)
	if !ok {
		return nil
	}
	return &v
}

// Sqft returns the living area in square feet.
func Sqft(raw interface{}) *int {
	v, ok := lenient(raw)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}

// lenient coerces numbers and numeric strings, rejecting negatives.
func lenient(raw interface{}) (float64, bool) {
	var v float64
	if s, isString := raw.(string); isString {
		m := leadNumber.FindString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		v = f
	} else {
		f, ok := number(raw)
		if !ok {
			return 0, false
		}
		v = f
	}

	if v < 0 {
		return 0, false
	}
	return v, true
}

func number(raw interface{}) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
