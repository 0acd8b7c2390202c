// Package export writes record lists as spreadsheet friendly CSV.
//
// Files start with a UTF-8 byte order mark, use a comma delimiter and "\n"
// line breaks. Text cells are always double quoted with embedded quotes
// doubled; numeric cells are written bare. Only visible columns are written,
// in display order.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lifedash/internal/core"
	"lifedash/internal/view"
)

const bom = "\uFEFF"

// ContentType is sent with every export.
const ContentType = "text/csv; charset=utf-8"

// Domain names used in export file names.
const (
	DomainTransactions = "finance_transactions"
	DomainFuel         = "fuel_entries"
	DomainDreams       = "dreams"
)

// Filename returns {domain}_{YYYY-MM-DD}.csv for the day of now.
func Filename(domain string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", domain, now.Format("2006-01-02"))
}

// Cell is one CSV value.
type Cell struct {
	Text   string
	Number bool
}

func Text(s string) Cell { return Cell{Text: s} }

func Number(d decimal.Decimal) Cell { return Cell{Text: d.String(), Number: true} }

// Write emits header and rows. Header labels are quoted only when they need
// to be.
func Write(w io.Writer, header []string, rows [][]Cell) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(bom)

	for i, h := range header {
		if i > 0 {
			bw.WriteByte(',')
		}
		if strings.ContainsAny(h, ",\"\n\r") {
			bw.WriteString(quote(h))
		} else {
			bw.WriteString(h)
		}
	}

	for _, row := range rows {
		bw.WriteByte('\n')
		for i, c := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			if c.Number {
				bw.WriteString(c.Text)
			} else {
				bw.WriteString(quote(c.Text))
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// table picks the visible columns out of a full row built by cell.
func table[T any](cols *view.Columns, recs []T, cell func(T, string) Cell) ([]string, [][]Cell) {
	visible := cols.Visible()
	header := make([]string, len(visible))
	for i, c := range visible {
		header[i] = c.Label
	}
	rows := make([][]Cell, len(recs))
	for r, rec := range recs {
		row := make([]Cell, len(visible))
		for i, c := range visible {
			row[i] = cell(rec, c.Key)
		}
		rows[r] = row
	}
	return header, rows
}

// Transactions writes a finance listing.
func Transactions(w io.Writer, txs []core.Transaction, cols *view.Columns) error {
	header, rows := table(cols, txs, func(t core.Transaction, key string) Cell {
		switch key {
		case "serialNo":
			return Text(t.SerialNo)
		case "date":
			return Text(t.Date)
		case "type":
			return Text(string(t.Type))
		case "category":
			return Text(t.Category)
		case "description":
			return Text(t.Description)
		case "amount":
			return Number(t.Amount)
		}
		return Text("")
	})
	return Write(w, header, rows)
}

// Fuel writes a fuel listing. Entries without an average are written as 0.
func Fuel(w io.Writer, entries []core.FuelEntry, cols *view.Columns) error {
	header, rows := table(cols, entries, func(e core.FuelEntry, key string) Cell {
		switch key {
		case "serialNo":
			return Text(e.SerialNo)
		case "timestamp":
			return Text(e.Timestamp)
		case "vehicleType":
			return Text(string(e.VehicleType))
		case "price":
			return Number(e.Price)
		case "meterNo":
			return Number(e.MeterNo)
		case "liter":
			return Number(e.Liter)
		case "averageKM":
			if e.AverageKM.Valid {
				return Number(e.AverageKM.Decimal)
			}
			return Number(decimal.Zero)
		}
		return Text("")
	})
	return Write(w, header, rows)
}

// Dreams writes a dream listing. saved maps dream ids to their contributions
// total and may be nil.
func Dreams(w io.Writer, dreams []core.Dream, saved map[string]decimal.Decimal, cols *view.Columns) error {
	header, rows := table(cols, dreams, func(d core.Dream, key string) Cell {
		switch key {
		case "dreamId":
			return Text(d.DreamID)
		case "dreamName":
			return Text(d.DreamName)
		case "totalCost":
			return Number(d.TotalCost)
		case "saved":
			return Number(saved[d.DreamID])
		case "startDate":
			return Text(d.StartDate)
		case "endDate":
			return Text(d.EndDate)
		case "description":
			return Text(d.Description)
		}
		return Text("")
	})
	return Write(w, header, rows)
}
