// Package view holds per-list column visibility. It only decides which
// columns a listing or export shows and never affects the figures computed
// from the records.
package view

import (
	"strings"
)

// Column is one displayable field of a record list.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Column sets per list, in display order.
var (
	TransactionColumns = []Column{
		{Key: "serialNo", Label: "Serial No"},
		{Key: "date", Label: "Date"},
		{Key: "type", Label: "Type"},
		{Key: "category", Label: "Category"},
		{Key: "description", Label: "Description"},
		{Key: "amount", Label: "Amount"},
	}

	FuelColumns = []Column{
		{Key: "serialNo", Label: "Serial No"},
		{Key: "timestamp", Label: "Timestamp"},
		{Key: "vehicleType", Label: "Vehicle Type"},
		{Key: "price", Label: "Price"},
		{Key: "meterNo", Label: "Meter No"},
		{Key: "liter", Label: "Liter"},
		{Key: "averageKM", Label: "Average KM"},
	}

	DreamColumns = []Column{
		{Key: "dreamId", Label: "Dream ID"},
		{Key: "dreamName", Label: "Dream Name"},
		{Key: "totalCost", Label: "Total Cost"},
		{Key: "saved", Label: "Saved"},
		{Key: "startDate", Label: "Start Date"},
		{Key: "endDate", Label: "End Date"},
		{Key: "description", Label: "Description"},
	}
)

// Columns maps column keys to visibility for one list.
type Columns struct {
	order   []Column
	visible map[string]bool
}

// NewColumns returns a set with every column visible.
func NewColumns(cols []Column) *Columns {
	c := &Columns{
		order:   append([]Column(nil), cols...),
		visible: make(map[string]bool, len(cols)),
	}
	for _, col := range cols {
		c.visible[col.Key] = true
	}
	return c
}

// Toggle flips key and reports whether the key exists.
func (c *Columns) Toggle(key string) bool {
	v, ok := c.visible[key]
	if ok {
		c.visible[key] = !v
	}
	return ok
}

// Set changes one column and reports whether the key exists.
func (c *Columns) Set(key string, visible bool) bool {
	if _, ok := c.visible[key]; !ok {
		return false
	}
	c.visible[key] = visible
	return true
}

// SetAll shows or hides every column.
func (c *Columns) SetAll(visible bool) {
	for k := range c.visible {
		c.visible[k] = visible
	}
}

// IsVisible reports whether key is shown. Unknown keys are not.
func (c *Columns) IsVisible(key string) bool {
	return c.visible[key]
}

// Visible returns the shown columns in declared order.
func (c *Columns) Visible() []Column {
	out := make([]Column, 0, len(c.order))
	for _, col := range c.order {
		if c.visible[col.Key] {
			out = append(out, col)
		}
	}
	return out
}

// Hide parses a comma separated list of keys to hide, as sent in the hide
// query parameter, and applies it to a fresh set. Unknown keys are ignored.
func Hide(cols []Column, hide string) *Columns {
	c := NewColumns(cols)
	for _, key := range strings.Split(hide, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			c.Set(key, false)
		}
	}
	return c
}
