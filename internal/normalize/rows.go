package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lifedash/internal/core"
	"lifedash/internal/sheets"
)

// number renders a decimal as a bare JSON number without float rounding.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// TransactionInsert builds the Daily write. The serial slot carries the
// type until the store replaces it. Dates are resolved in now's location.
func TransactionInsert(d core.TransactionDraft, now time.Time) sheets.InsertRequest {
	typ := strings.ToLower(string(d.Type))
	return sheets.InsertRequest{
		Action:        sheets.ActionInsert,
		Discriminator: sheets.Discriminator{Key: sheets.FieldTransactionType, Value: typ},
		RowData: []any{
			core.FormatTimestamp(now),
			typ,
			typ,
			number(d.Amount),
			strings.TrimSpace(d.Category),
			strings.TrimSpace(d.Description),
			core.NormalizeDate(strings.TrimSpace(d.Date), now.Location()),
		},
	}
}

// DreamInsert builds the Dreams write with placeholder identifiers.
func DreamInsert(d core.DreamDraft, now time.Time) sheets.InsertRequest {
	name := strings.TrimSpace(d.Name)
	return sheets.InsertRequest{
		Action:        sheets.ActionInsertDream,
		Discriminator: sheets.Discriminator{Key: sheets.FieldDreamName, Value: name},
		RowData: []any{
			core.FormatTimestamp(now),
			core.PlaceholderSerial,
			core.PlaceholderDreamID,
			name,
			number(d.TotalCost),
			core.NormalizeDate(strings.TrimSpace(d.StartDate), now.Location()),
			core.NormalizeDate(strings.TrimSpace(d.EndDate), now.Location()),
			strings.TrimSpace(d.Description),
		},
	}
}

// ContributionInsert builds the Dream Tracker write.
func ContributionInsert(d core.ContributionDraft, now time.Time) sheets.InsertRequest {
	return sheets.InsertRequest{
		Action:        sheets.ActionInsertTracker,
		Discriminator: sheets.Discriminator{Key: sheets.FieldDreamID, Value: d.DreamID},
		RowData: []any{
			core.FormatTimestamp(now),
			core.PlaceholderSerial,
			d.DreamID,
			strings.TrimSpace(d.DreamName),
			number(d.Amount),
			strings.TrimSpace(d.Remarks),
		},
	}
}

// FuelInsert builds the Fuel Trackers write. The serial slot carries the
// vehicle type until the store replaces it.
func FuelInsert(d core.FuelDraft, now time.Time) sheets.InsertRequest {
	vehicle := string(d.VehicleType)
	return sheets.InsertRequest{
		Action:        sheets.ActionInsertFuel,
		Discriminator: sheets.Discriminator{Key: sheets.FieldVehicleType, Value: vehicle},
		RowData: []any{
			core.FormatTimestamp(now),
			vehicle,
			vehicle,
			number(d.Price),
			number(d.MeterNo),
			number(d.Liter),
		},
	}
}

// PendingTransaction is the optimistic record shown while the write is in flight.
func (n *Normalizer) PendingTransaction(d core.TransactionDraft, key string) core.Transaction {
	return core.Transaction{
		ID:          key,
		SerialNo:    key,
		Type:        core.TransactionType(strings.ToLower(string(d.Type))),
		Amount:      d.Amount,
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
		Date:        core.NormalizeDate(strings.TrimSpace(d.Date), n.loc),
		Pending:     true,
	}
}

// ConfirmTransaction applies the store response to a pending record.
func ConfirmTransaction(p core.Transaction, res sheets.InsertResult) core.Transaction {
	p.Pending = false
	if s := res.SerialNumber(); s != "" {
		p.ID, p.SerialNo = s, s
	}
	if res.FormattedDate != "" {
		p.Date = res.FormattedDate
	}
	return p
}

func (n *Normalizer) PendingDream(d core.DreamDraft, key string, now time.Time) core.Dream {
	return core.Dream{
		ID:          key,
		Timestamp:   core.FormatTimestamp(now),
		SerialNo:    key,
		DreamID:     key,
		DreamName:   strings.TrimSpace(d.Name),
		TotalCost:   d.TotalCost,
		StartDate:   core.NormalizeDate(strings.TrimSpace(d.StartDate), n.loc),
		EndDate:     core.NormalizeDate(strings.TrimSpace(d.EndDate), n.loc),
		Description: strings.TrimSpace(d.Description),
		Pending:     true,
	}
}

// ConfirmDream applies the store response; missing identifiers fall back
// to the placeholders the row was written with.
func ConfirmDream(p core.Dream, res sheets.InsertResult) core.Dream {
	p.Pending = false
	p.SerialNo = orDefault(res.SerialNumber(), core.PlaceholderSerial)
	p.DreamID = orDefault(res.DreamID, core.PlaceholderDreamID)
	p.ID = p.DreamID
	return p
}

func (n *Normalizer) PendingContribution(d core.ContributionDraft, key string, now time.Time) core.DreamContribution {
	return core.DreamContribution{
		ID:        key,
		Timestamp: core.FormatTimestamp(now),
		SerialNo:  key,
		DreamID:   d.DreamID,
		DreamName: strings.TrimSpace(d.DreamName),
		AddAmount: d.Amount,
		Remarks:   strings.TrimSpace(d.Remarks),
		Pending:   true,
	}
}

func ConfirmContribution(p core.DreamContribution, res sheets.InsertResult) core.DreamContribution {
	p.Pending = false
	p.SerialNo = orDefault(res.SerialNumber(), core.PlaceholderSerial)
	p.ID = p.SerialNo
	return p
}

func (n *Normalizer) PendingFuel(d core.FuelDraft, key string, now time.Time) core.FuelEntry {
	return core.FuelEntry{
		ID:          key,
		Timestamp:   core.FormatTimestamp(now),
		SerialNo:    key,
		VehicleType: d.VehicleType,
		Price:       d.Price,
		MeterNo:     d.MeterNo,
		Liter:       d.Liter,
		Pending:     true,
	}
}

func ConfirmFuel(p core.FuelEntry, res sheets.InsertResult) core.FuelEntry {
	p.Pending = false
	if s := res.SerialNumber(); s != "" {
		p.ID, p.SerialNo = s, s
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
