package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantJSON bool
		want     map[string]string
	}{
		{
			name:     "json",
			body:     `{"type":"Expense","amount":12.5,"category":" Food ","recurring":true}`,
			wantJSON: true,
			want:     map[string]string{"type": "Expense", "amount": "12.5", "category": "Food", "recurring": "true", "missing": ""},
		},
		{
			name: "form",
			body: "type=Income&amount=300&description=March+salary%00",
			want: map[string]string{"type": "Income", "amount": "300", "description": "March salary"},
		},
		{
			name: "empty",
			body: "",
			want: map[string]string{"type": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			p, err := ParseBody(httptest.NewRecorder(), r)
			if err != nil {
				t.Fatalf("ParseBody() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v", p.IsJSON())
			}
			for k, want := range tt.want {
				if got := p.Get(k); got != want {
					t.Errorf("Get(%q) = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestParseBody_InvalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":`))
	_, err := ParseBody(httptest.NewRecorder(), r)
	if !errors.Is(err, errBadRequest) {
		t.Fatalf("error = %v, want errBadRequest", err)
	}
}

func TestRequestBodyParser_Decimal(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("amount=1,250.50&bad=abc&blank="))
	p, err := ParseBody(httptest.NewRecorder(), r)
	if err != nil {
		t.Fatal(err)
	}

	d, err := p.Decimal("amount", false)
	if err != nil || !d.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("amount = %v, %v", d, err)
	}
	if _, err := p.Decimal("bad", false); !errors.Is(err, errBadRequest) {
		t.Errorf("bad: error = %v", err)
	}
	if _, err := p.Decimal("blank", false); !errors.Is(err, errBadRequest) {
		t.Errorf("blank required: error = %v", err)
	}
	if d, err := p.Decimal("blank", true); err != nil || !d.IsZero() {
		t.Errorf("blank optional = %v, %v", d, err)
	}
	if p.First("missing", "amount") != "1,250.50" {
		t.Errorf("First() = %q", p.First("missing", "amount"))
	}
}

func TestValidateMonth(t *testing.T) {
	for _, ok := range []string{"", "2024-03", "1999-12"} {
		if err := validateMonth(ok); err != nil {
			t.Errorf("validateMonth(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"2024-13", "2024/03", "03-2024", "2024-3", "abcd-ef"} {
		if err := validateMonth(bad); err == nil {
			t.Errorf("validateMonth(%q) should fail", bad)
		}
	}
}

func TestFilters(t *testing.T) {
	q := url.Values{"type": {"Expense"}, "q": {" rent "}, "month": {"2024-03"}, "vehicle": {"Car"}}
	tf := transactionFilter(q)
	if tf.Type != "Expense" || tf.Search != "rent" || tf.Month != "2024-03" {
		t.Errorf("transactionFilter = %+v", tf)
	}
	if ff := fuelFilter(q); ff.Vehicle != "Car" || ff.Search != "rent" {
		t.Errorf("fuelFilter = %+v", ff)
	}
	if queryInt(url.Values{"limit": {"x"}}, "limit", 50) != 50 {
		t.Error("queryInt should fall back on bad input")
	}
}
