package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lifedash/internal/core"
)

// AssignServerFields fills in the identifiers a store issues for a new row,
// following the layout of each write action. It returns the row as it
// should be persisted together with the result reported to the caller.
//
// Adapters that talk to a plain spreadsheet use it to behave like the
// scripted endpoint, which assigns serials itself.
func AssignServerFields(existing [][]any, req InsertRequest, loc *time.Location) ([]any, InsertResult, error) {
	row := append([]any(nil), req.RowData...)
	res := InsertResult{Success: true}

	switch req.Action {
	case ActionInsert:
		if len(row) < 7 {
			return nil, InsertResult{}, fmt.Errorf("finance row needs 7 cells, got %d", len(row))
		}
		res.Serial = nextSerial(existing, 1, serialPrefix(req.Discriminator.Value))
		res.FormattedDate = core.NormalizeDate(row[6], loc)
		row[1] = res.Serial
		row[6] = res.FormattedDate
	case ActionInsertFuel:
		if len(row) < 6 {
			return nil, InsertResult{}, fmt.Errorf("fuel row needs 6 cells, got %d", len(row))
		}
		res.Serial = nextSerial(existing, 1, serialPrefix(req.Discriminator.Value))
		row[1] = res.Serial
	case ActionInsertDream:
		if len(row) < 8 {
			return nil, InsertResult{}, fmt.Errorf("dream row needs 8 cells, got %d", len(row))
		}
		res.SerialNo = nextSerial(existing, 1, "SN")
		res.DreamID = nextSerial(existing, 2, "DN")
		row[1] = res.SerialNo
		row[2] = res.DreamID
	case ActionInsertTracker:
		if len(row) < 6 {
			return nil, InsertResult{}, fmt.Errorf("tracker row needs 6 cells, got %d", len(row))
		}
		res.SerialNo = nextSerial(existing, 1, "SN")
		row[1] = res.SerialNo
	default:
		return nil, InsertResult{}, fmt.Errorf("unsupported action %q", req.Action)
	}
	return row, res, nil
}

// serialPrefix derives a short serial prefix from a discriminator value,
// e.g. "income" -> "IN", "Car" -> "CA".
func serialPrefix(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) < 2 {
		return "SN"
	}
	return v[:2]
}

// nextSerial returns prefix-NNN one above the highest serial with the same
// prefix found in column col. Row 0 is the header.
func nextSerial(rows [][]any, col int, prefix string) string {
	highest := 0
	for i, row := range rows {
		if i == 0 || col >= len(row) {
			continue
		}
		cell := core.CellString(row[col])
		num, ok := strings.CutPrefix(cell, prefix+"-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(num); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1)
}
