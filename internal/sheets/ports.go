package sheets

import (
	"context"
	"errors"
	"fmt"
)

// Sheet names used by the dashboard spreadsheet.
const (
	SheetFinance      = "Daily"
	SheetDreams       = "Dreams"
	SheetDreamTracker = "Dream Tracker"
	SheetFuel         = "Fuel Trackers"
	SheetLogin        = "Login"
)

// Names maps each dataset to the sheet holding it.
type Names struct {
	Finance      string
	Dreams       string
	DreamTracker string
	Fuel         string
	Login        string
}

// DefaultNames returns the stock sheet names.
func DefaultNames() Names {
	return Names{
		Finance:      SheetFinance,
		Dreams:       SheetDreams,
		DreamTracker: SheetDreamTracker,
		Fuel:         SheetFuel,
		Login:        SheetLogin,
	}
}

// Write actions understood by the store.
const (
	ActionFetch         = "fetch"
	ActionInsert        = "insert"
	ActionInsertDream   = "insertDream"
	ActionInsertTracker = "insertTracker"
	ActionInsertFuel    = "insertFuel"
)

// Discriminator field names sent alongside each write action.
const (
	FieldTransactionType = "transactionType"
	FieldDreamName       = "dreamName"
	FieldDreamID         = "dreamId"
	FieldVehicleType     = "vehicleType"
)

// Ports for outbound adapters.
type (
	// RowFetcher returns every row of a sheet, header row included.
	RowFetcher interface {
		FetchRows(ctx context.Context, sheet string) ([][]any, error)
	}

	// RowInserter appends one row to a sheet and reports the fields the
	// store assigned to it.
	RowInserter interface {
		InsertRow(ctx context.Context, sheet string, req InsertRequest) (InsertResult, error)
	}

	Store interface {
		RowFetcher
		RowInserter
	}
)

// Discriminator is the per-domain tag sent next to rowData.
type Discriminator struct {
	Key   string
	Value string
}

// InsertRequest describes a single row write.
type InsertRequest struct {
	Action        string
	Discriminator Discriminator
	RowData       []any
}

// InsertResult carries the store response for a write.
// Only the fields relevant to the action are populated.
type InsertResult struct {
	Success       bool   `json:"success"`
	Serial        string `json:"serial,omitempty"`
	SerialNo      string `json:"serialNo,omitempty"`
	DreamID       string `json:"dreamId,omitempty"`
	FormattedDate string `json:"formattedDate,omitempty"`
	Error         string `json:"error,omitempty"`
}

// SerialNumber returns whichever serial field the store filled in.
func (r InsertResult) SerialNumber() string {
	if r.Serial != "" {
		return r.Serial
	}
	return r.SerialNo
}

// ErrorKind classifies store failures.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindLogical   ErrorKind = "logical"
	KindDecode    ErrorKind = "decode"
)

var (
	ErrStoreFailure = errors.New("store reported failure")
	ErrUnknownSheet = errors.New("unknown sheet")
)

// StoreError is returned by adapters for every failed fetch or insert.
type StoreError struct {
	Kind       ErrorKind
	Sheet      string
	Action     string
	StatusCode int
	Message    string
	Err        error
}

func (e *StoreError) Error() string {
	msg := fmt.Sprintf("%s %s %q", e.Kind, e.Action, e.Sheet)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches another StoreError of the same kind.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsTransport reports whether err is a network-level store failure.
func IsTransport(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindTransport
}

// IsLogical reports whether the store answered with success=false.
func IsLogical(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindLogical
}
