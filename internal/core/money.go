// Package core provides the domain records and the cell parsing rules used
// to read them out of spreadsheet rows.
//
// This file contains the lenient number and string conversions applied to
// raw cell values.
package core

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var leadingNumber = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseNumber converts a raw cell into a decimal.
//
// Strings are read up to the longest numeric prefix, so "12.5 L" yields 12.5
// and "1,200" yields 1. Anything without a numeric prefix yields zero.
//
// Examples:
//   ParseNumber("42")      -> 42
//   ParseNumber(" 3.50km") -> 3.5
//   ParseNumber("abc")     -> 0
//   ParseNumber(nil)       -> 0
func ParseNumber(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return n
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case float32:
		return ParseNumber(float64(n))
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case int32:
		return decimal.NewFromInt(int64(n))
	case json.Number:
		return parseLeadingNumber(n.String())
	case bool:
		return decimal.Zero
	case string:
		return parseLeadingNumber(n)
	default:
		return parseLeadingNumber(fmt.Sprint(n))
	}
}

func parseLeadingNumber(s string) decimal.Decimal {
	m := leadingNumber.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return decimal.Zero
	}
	neg := false
	switch m[0] {
	case '-':
		neg = true
		m = m[1:]
	case '+':
		m = m[1:]
	}
	mantissa, exp := m, ""
	if i := strings.IndexAny(m, "eE"); i >= 0 {
		mantissa, exp = m[:i], m[i:]
	}
	mantissa = strings.TrimSuffix(mantissa, ".")
	if strings.HasPrefix(mantissa, ".") {
		mantissa = "0" + mantissa
	}
	d, err := decimal.NewFromString(mantissa + exp)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		return d.Neg()
	}
	return d
}

// CellString converts a raw cell into text. Empty and zero-like cells
// (nil, "", 0, false) become the empty string.
func CellString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if !s {
			return ""
		}
		return "true"
	case float64:
		if s == 0 || math.IsNaN(s) {
			return ""
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		if s == 0 {
			return ""
		}
		return strconv.Itoa(s)
	case int64:
		if s == 0 {
			return ""
		}
		return strconv.FormatInt(s, 10)
	case json.Number:
		if f, err := s.Float64(); err == nil && f == 0 {
			return ""
		}
		return s.String()
	case decimal.Decimal:
		if s.IsZero() {
			return ""
		}
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
