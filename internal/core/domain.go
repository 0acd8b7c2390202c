package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Car  VehicleType = "Car"
	Bike VehicleType = "Bike"
)

// Placeholders written into the serial and dream id slots of a dream row.
// The store replaces them with its own identifiers on insert.
const (
	PlaceholderSerial  = "SN-001"
	PlaceholderDreamID = "DN-001"
)

// TempKeyPrefix marks keys issued locally for records the store has not confirmed.
const TempKeyPrefix = "TEMP-"

type (
	TransactionType string
	VehicleType     string

	Transaction struct {
		ID          string          `json:"id"`
		SerialNo    string          `json:"serialNo"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        string          `json:"date"` // DD/MM/YYYY
		Pending     bool            `json:"pending,omitempty"`
	}

	Dream struct {
		ID          string          `json:"id"`
		Timestamp   string          `json:"timestamp"`
		SerialNo    string          `json:"serialNo"`
		DreamID     string          `json:"dreamId"`
		DreamName   string          `json:"dreamName"`
		TotalCost   decimal.Decimal `json:"totalCost"`
		StartDate   string          `json:"startDate"`
		EndDate     string          `json:"endDate"`
		Description string          `json:"description"`
		Pending     bool            `json:"pending,omitempty"`
	}

	DreamContribution struct {
		ID        string          `json:"id"`
		Timestamp string          `json:"timestamp"`
		SerialNo  string          `json:"serialNo"`
		DreamID   string          `json:"dreamId"`
		DreamName string          `json:"dreamName"`
		AddAmount decimal.Decimal `json:"addAmount"`
		Remarks   string          `json:"remarks"`
		Pending   bool            `json:"pending,omitempty"`
	}

	FuelEntry struct {
		ID          string              `json:"id"`
		Timestamp   string              `json:"timestamp"`
		SerialNo    string              `json:"serialNo"`
		VehicleType VehicleType         `json:"vehicleType"`
		Price       decimal.Decimal     `json:"price"`
		MeterNo     decimal.Decimal     `json:"meterNo"`
		Liter       decimal.Decimal     `json:"liter"`
		AverageKM   decimal.NullDecimal `json:"averageKM"`
		Pending     bool                `json:"pending,omitempty"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidVehicle    = errors.New("invalid vehicle type")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyDate         = errors.New("empty date")
	ErrEmptyDreamName    = errors.New("empty dream name")
	ErrEmptyDreamID      = errors.New("empty dream id")
	ErrInvalidLiter      = errors.New("invalid liter")
	ErrInvalidMeter      = errors.New("invalid meter reading")
	ErrDescriptionLength = errors.New("description too long (max 500 characters)")
)

// IsIncome reports whether the transaction type is income, ignoring case.
func (t TransactionType) IsIncome() bool {
	return strings.EqualFold(string(t), string(Income))
}

// IsExpense reports whether the transaction type is expense, ignoring case.
func (t TransactionType) IsExpense() bool {
	return strings.EqualFold(string(t), string(Expense))
}

// ParseTransactionType maps user input to a canonical transaction type.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Income):
		return Income, nil
	case string(Expense):
		return Expense, nil
	}
	return "", ErrInvalidType
}

// ParseVehicleType maps user input to a canonical vehicle type.
func ParseVehicleType(s string) (VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car":
		return Car, nil
	case "bike":
		return Bike, nil
	}
	return "", ErrInvalidVehicle
}

// IsTempKey reports whether key was issued locally for an unconfirmed record.
func IsTempKey(key string) bool {
	return strings.HasPrefix(key, TempKeyPrefix)
}

// Drafts are user submissions before they become records.
type (
	TransactionDraft struct {
		Type        TransactionType
		Amount      decimal.Decimal
		Category    string
		Description string
		Date        string // YYYY-MM-DD or DD/MM/YYYY
	}

	DreamDraft struct {
		Name        string
		TotalCost   decimal.Decimal
		StartDate   string
		EndDate     string
		Description string
	}

	ContributionDraft struct {
		DreamID   string
		DreamName string
		Amount    decimal.Decimal
		Remarks   string
	}

	FuelDraft struct {
		VehicleType VehicleType
		Price       decimal.Decimal
		MeterNo     decimal.Decimal
		Liter       decimal.Decimal
	}
)

func (d TransactionDraft) Validate() error {
	if _, err := ParseTransactionType(string(d.Type)); err != nil {
		return err
	}
	if d.Amount.IsNegative() || d.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrEmptyDate
	}
	if len(d.Description) > 500 {
		return ErrDescriptionLength
	}
	return nil
}

func (d DreamDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyDreamName
	}
	if !d.TotalCost.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.StartDate) == "" || strings.TrimSpace(d.EndDate) == "" {
		return ErrEmptyDate
	}
	if len(d.Description) > 500 {
		return ErrDescriptionLength
	}
	return nil
}

func (d ContributionDraft) Validate() error {
	if strings.TrimSpace(d.DreamID) == "" {
		return ErrEmptyDreamID
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (d FuelDraft) Validate() error {
	if _, err := ParseVehicleType(string(d.VehicleType)); err != nil {
		return err
	}
	if d.Price.IsNegative() {
		return ErrInvalidAmount
	}
	if d.MeterNo.IsNegative() {
		return ErrInvalidMeter
	}
	if !d.Liter.IsPositive() {
		return ErrInvalidLiter
	}
	return nil
}
