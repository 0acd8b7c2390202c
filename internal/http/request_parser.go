package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"lifedash/internal/aggregate"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks request errors that map to 400.
var errBadRequest = errors.New("bad request")

func badRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

// RequestBodyParser reads a JSON object or a form-encoded body once.
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

// ParseBody reads and parses the body of r. Bodies starting with '{' are
// parsed as JSON, anything else as form data.
func ParseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequestf("read body: %v", err)
	}

	p := &RequestBodyParser{}
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			return nil, badRequestf("invalid JSON body: %v", err)
		}
		return p, nil
	}

	p.formData, err = url.ParseQuery(trimmed)
	if err != nil {
		return nil, badRequestf("invalid form body: %v", err)
	}
	return p, nil
}

// Get returns the trimmed, sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	return sanitizeInput(p.formData.Get(key))
}

// First returns the first non-empty value among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Decimal parses key as a decimal number. Empty values parse to zero when
// optional is set.
func (p *RequestBodyParser) Decimal(key string, optional bool) (decimal.Decimal, error) {
	raw := strings.ReplaceAll(p.Get(key), ",", "")
	if raw == "" {
		if optional {
			return decimal.Zero, nil
		}
		return decimal.Zero, badRequestf("%s is required", key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, badRequestf("%s must be a number", key)
	}
	return d, nil
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// sanitizeInput trims s and removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func transactionFilter(q url.Values) aggregate.TransactionFilter {
	return aggregate.TransactionFilter{
		Type:   sanitizeInput(q.Get("type")),
		Search: sanitizeInput(q.Get("q")),
		Month:  sanitizeInput(q.Get("month")),
	}
}

func fuelFilter(q url.Values) aggregate.FuelFilter {
	return aggregate.FuelFilter{
		Vehicle: sanitizeInput(q.Get("vehicle")),
		Search:  sanitizeInput(q.Get("q")),
	}
}

func dreamFilter(q url.Values) aggregate.DreamFilter {
	return aggregate.DreamFilter{Search: sanitizeInput(q.Get("q"))}
}

// validateMonth accepts "" or YYYY-MM.
func validateMonth(m string) error {
	if m == "" {
		return nil
	}
	if len(m) != 7 || m[4] != '-' {
		return badRequestf("month must be YYYY-MM")
	}
	y, errY := strconv.Atoi(m[:4])
	mo, errM := strconv.Atoi(m[5:])
	if errY != nil || errM != nil || y < 1 || mo < 1 || mo > 12 {
		return badRequestf("month must be YYYY-MM")
	}
	return nil
}

func queryInt(q url.Values, key string, def int) int {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
