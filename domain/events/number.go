package events

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric payload field that tolerates string input.
// The raw text is kept so validation can tell "100" from "2024-01-01T10:00:00Z".
type Number struct {
	Value   float64
	Raw     string
	Numeric bool
}

// Num builds a numeric Number
func Num(v float64) *Number {
	return &Number{Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64), Numeric: true}
}

// NumString builds a Number from text, parsing it when possible
func NumString(s string) *Number {
	n := &Number{Raw: s}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		n.Value = v
		n.Numeric = true
	}
	return n
}

// Float returns the numeric value, or zero for nil and non-numeric input
func (n *Number) Float() float64 {
	if n == nil || !n.Numeric {
		return 0
	}
	return n.Value
}

// Int truncates the numeric value
func (n *Number) Int() int {
	return int(n.Float())
}

// IsNumeric reports whether the field holds a usable number
func (n *Number) IsNumeric() bool {
	return n != nil && n.Numeric
}

func (n *Number) String() string {
	if n == nil {
		return ""
	}
	if n.Numeric {
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	}
	return n.Raw
}

// MarshalJSON writes numbers as JSON numbers and anything else as its raw string
func (n Number) MarshalJSON() ([]byte, error) {
	if n.Numeric {
		return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
	}
	return json.Marshal(n.Raw)
}

// UnmarshalJSON accepts a JSON number or a JSON string
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = *NumString(s)
		return nil
	}

	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*n = Number{Value: v, Raw: string(trimmed), Numeric: true}
	return nil
}
