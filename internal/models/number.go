package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is shown wherever a report cell has no value
const Placeholder = "-"

// Number is a numeric field as uploaded to Nightscout. Uploaders send plain
// numbers, numeric strings, empty strings or Mongo extended JSON
// ({"$numberDecimal": "135"}), so decoding never fails: anything that is not a
// number leaves the field invalid and only that field is treated as absent.
type Number struct {
	Raw   string // text as uploaded, used for display
	Value decimal.Decimal
	Valid bool
}

// NumberOf builds a valid Number from a float
func NumberOf(f float64) Number {
	d := decimal.NewFromFloat(f)
	return Number{Raw: d.String(), Value: d, Valid: true}
}

// ParseNumber builds a Number from text; invalid text yields an invalid Number
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	n := Number{Raw: s}
	if s == "" {
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return n
	}
	n.Value = d
	n.Valid = true
	return n
}

// Present reports whether the field carries a non-zero number
func (n Number) Present() bool {
	return n.Valid && !n.Value.IsZero()
}

// Float64 returns the value and whether it is valid
func (n Number) Float64() (float64, bool) {
	if !n.Valid {
		return 0, false
	}
	return n.Value.InexactFloat64(), true
}

// Display returns the uploaded text, or the placeholder when absent or zero
func (n Number) Display() string {
	if !n.Present() {
		return Placeholder
	}
	return n.Raw
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = ParseNumber(s)
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil
		}
		for _, key := range []string{"$numberDecimal", "$numberDouble", "$numberInt", "$numberLong"} {
			if inner, ok := wrapped[key]; ok {
				return n.UnmarshalJSON(inner)
			}
		}
	case 't', 'f', '[':
		// booleans and arrays are not numbers
	default:
		*n = ParseNumber(string(data))
	}

	return nil
}

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid:
		return []byte(n.Value.String()), nil
	case n.Raw != "":
		return json.Marshal(n.Raw)
	default:
		return []byte("null"), nil
	}
}
