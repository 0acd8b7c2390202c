// Package normalize turns raw sheet rows into typed records and typed
// drafts back into rows.
//
// Every sheet stores one record per row in a fixed column order. Row 0 is
// the header and is skipped. A row whose identifying column is empty is
// dropped; no other column is validated, and unreadable cells fall back to
// zero or the empty string.
package normalize

import (
	"strconv"
	"time"

	"lifedash/internal/core"
)

// Column positions per sheet.
const (
	colTimestamp = 0
	colSerial    = 1

	// Daily
	colTxType        = 2
	colTxAmount      = 3
	colTxCategory    = 4
	colTxDescription = 5
	colTxDate        = 6

	// Dreams
	colDreamID          = 2
	colDreamName        = 3
	colDreamTotalCost   = 4
	colDreamStartDate   = 5
	colDreamEndDate     = 6
	colDreamDescription = 7

	// Dream Tracker
	colTrackerDreamID   = 2
	colTrackerDreamName = 3
	colTrackerAmount    = 4
	colTrackerRemarks   = 5

	// Fuel Trackers
	colFuelVehicle = 2
	colFuelPrice   = 3
	colFuelMeter   = 4
	colFuelLiter   = 5
)

// Normalizer carries the zone used to render parsed timestamps as dates.
type Normalizer struct {
	loc *time.Location
}

// New returns a Normalizer formatting dates in loc (time.Local when nil).
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// Location returns the zone dates are rendered in.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

func str(row []any, i int) string {
	return core.CellString(cell(row, i))
}

// rowID is the 1-based position of the row among data rows.
func rowID(dataIndex int) string {
	return strconv.Itoa(dataIndex + 1)
}

// Transactions normalizes the Daily sheet. Rows without a serial are dropped.
func (n *Normalizer) Transactions(rows [][]any) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for i, row := range dataRows(rows) {
		serial := str(row, colSerial)
		if serial == "" {
			continue
		}
		out = append(out, core.Transaction{
			ID:          rowID(i),
			SerialNo:    serial,
			Type:        core.TransactionType(str(row, colTxType)),
			Amount:      core.ParseNumber(cell(row, colTxAmount)),
			Category:    str(row, colTxCategory),
			Description: str(row, colTxDescription),
			Date:        core.NormalizeDate(cell(row, colTxDate), n.loc),
		})
	}
	return out
}

// Dreams normalizes the Dreams sheet. Rows without a dream id are dropped.
func (n *Normalizer) Dreams(rows [][]any) []core.Dream {
	out := make([]core.Dream, 0, len(rows))
	for i, row := range dataRows(rows) {
		dreamID := str(row, colDreamID)
		if dreamID == "" {
			continue
		}
		out = append(out, core.Dream{
			ID:          rowID(i),
			Timestamp:   str(row, colTimestamp),
			SerialNo:    str(row, colSerial),
			DreamID:     dreamID,
			DreamName:   str(row, colDreamName),
			TotalCost:   core.ParseNumber(cell(row, colDreamTotalCost)),
			StartDate:   core.NormalizeDate(cell(row, colDreamStartDate), n.loc),
			EndDate:     core.NormalizeDate(cell(row, colDreamEndDate), n.loc),
			Description: str(row, colDreamDescription),
		})
	}
	return out
}

// Contributions normalizes the Dream Tracker sheet. Rows without a dream id
// are dropped.
func (n *Normalizer) Contributions(rows [][]any) []core.DreamContribution {
	out := make([]core.DreamContribution, 0, len(rows))
	for i, row := range dataRows(rows) {
		dreamID := str(row, colTrackerDreamID)
		if dreamID == "" {
			continue
		}
		out = append(out, core.DreamContribution{
			ID:        rowID(i),
			Timestamp: str(row, colTimestamp),
			SerialNo:  str(row, colSerial),
			DreamID:   dreamID,
			DreamName: str(row, colTrackerDreamName),
			AddAmount: core.ParseNumber(cell(row, colTrackerAmount)),
			Remarks:   str(row, colTrackerRemarks),
		})
	}
	return out
}

// FuelEntries normalizes the Fuel Trackers sheet. Rows without a serial are
// dropped. AverageKM is left unset; it depends on neighbouring entries.
func (n *Normalizer) FuelEntries(rows [][]any) []core.FuelEntry {
	out := make([]core.FuelEntry, 0, len(rows))
	for i, row := range dataRows(rows) {
		serial := str(row, colSerial)
		if serial == "" {
			continue
		}
		out = append(out, core.FuelEntry{
			ID:          rowID(i),
			Timestamp:   str(row, colTimestamp),
			SerialNo:    serial,
			VehicleType: core.VehicleType(str(row, colFuelVehicle)),
			Price:       core.ParseNumber(cell(row, colFuelPrice)),
			MeterNo:     core.ParseNumber(cell(row, colFuelMeter)),
			Liter:       core.ParseNumber(cell(row, colFuelLiter)),
		})
	}
	return out
}

func dataRows(rows [][]any) [][]any {
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}
