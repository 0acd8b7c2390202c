package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionTypeMatching(t *testing.T) {
	cases := []struct {
		in      TransactionType
		income  bool
		expense bool
	}{
		{"income", true, false},
		{"Income", true, false},
		{"EXPENSE", false, true},
		{"transfer", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := tc.in.IsIncome(); got != tc.income {
			t.Fatalf("%q IsIncome=%v, want %v", tc.in, got, tc.income)
		}
		if got := tc.in.IsExpense(); got != tc.expense {
			t.Fatalf("%q IsExpense=%v, want %v", tc.in, got, tc.expense)
		}
	}
}

func TestParseVehicleType(t *testing.T) {
	for in, want := range map[string]VehicleType{"car": Car, " Bike ": Bike, "CAR": Car} {
		got, err := ParseVehicleType(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q err=%v", in, got, err)
		}
	}
	if _, err := ParseVehicleType("truck"); !errors.Is(err, ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
}

func TestTransactionDraftValidate(t *testing.T) {
	good := TransactionDraft{Type: Income, Amount: decimal.NewFromInt(100), Category: "Salary", Date: "2024-01-15"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(d *TransactionDraft)
		want error
	}{
		{"bad type", func(d *TransactionDraft) { d.Type = "gift" }, ErrInvalidType},
		{"zero amount", func(d *TransactionDraft) { d.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(d *TransactionDraft) { d.Amount = decimal.NewFromInt(-1) }, ErrInvalidAmount},
		{"no category", func(d *TransactionDraft) { d.Category = "  " }, ErrEmptyCategory},
		{"no date", func(d *TransactionDraft) { d.Date = "" }, ErrEmptyDate},
		{"long description", func(d *TransactionDraft) { d.Description = strings.Repeat("x", 501) }, ErrDescriptionLength},
	}
	for _, tc := range cases {
		d := good
		tc.mod(&d)
		if err := d.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestFuelDraftValidate(t *testing.T) {
	good := FuelDraft{VehicleType: Car, Price: decimal.NewFromInt(500), MeterNo: decimal.NewFromInt(1000), Liter: decimal.NewFromInt(5)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.Liter = decimal.Zero
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLiter) {
		t.Fatalf("expected ErrInvalidLiter, got %v", err)
	}
	bad = good
	bad.VehicleType = "Bus"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
}

func TestDreamAndContributionDraftValidate(t *testing.T) {
	d := DreamDraft{Name: "Trip", TotalCost: decimal.NewFromInt(1000), StartDate: "2024-01-01", EndDate: "2024-12-31"}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	d.TotalCost = decimal.Zero
	if err := d.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	c := ContributionDraft{DreamID: "DN-002", Amount: decimal.NewFromInt(10)}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	c.DreamID = ""
	if err := c.Validate(); !errors.Is(err, ErrEmptyDreamID) {
		t.Fatalf("expected ErrEmptyDreamID, got %v", err)
	}
}

func TestIsTempKey(t *testing.T) {
	if !IsTempKey("TEMP-123") || IsTempKey("SN-001") {
		t.Fatalf("unexpected temp key detection")
	}
}
