package core

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical DD/MM/YYYY form stored in every date column.
	DateLayout = "02/01/2006"
	// TimestampLayout is written into the timestamp column of new rows.
	TimestampLayout = "02/01/2006 15:04:05"
)

var (
	dayFirstDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// Trailing zone name of a browser Date string, e.g. " (Central European Time)".
	zoneComment = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// Layouts tried, in order, when a cell is neither DD/MM/YYYY nor YYYY-MM-DD.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 02 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// NormalizeDate renders a raw date cell as DD/MM/YYYY.
//
// DD/MM/YYYY input is returned unchanged and YYYY-MM-DD is rearranged
// without parsing. Any other value is parsed as a timestamp and formatted
// in loc; if that fails the original text is returned. Empty cells yield "".
func NormalizeDate(v any, loc *time.Location) string {
	text := CellString(v)
	if text == "" {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	if s, ok := v.(string); ok {
		if dayFirstDate.MatchString(s) {
			return s
		}
		if isoDate.MatchString(s) {
			return s[8:10] + "/" + s[5:7] + "/" + s[0:4]
		}
	}
	t, ok := parseTimestamp(v, loc)
	if !ok {
		return text
	}
	return t.In(loc).Format(DateLayout)
}

func parseTimestamp(v any, loc *time.Location) (time.Time, bool) {
	switch n := v.(type) {
	case float64:
		return fromEpochMillis(n)
	case int64:
		return fromEpochMillis(float64(n))
	case int:
		return fromEpochMillis(float64(n))
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromEpochMillis(f)
	case time.Time:
		return n, true
	case string:
		s := zoneComment.ReplaceAllString(strings.TrimSpace(n), "")
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func fromEpochMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// FormatTimestamp renders t the way new rows carry their creation time.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// splitDate breaks a DD/MM/YYYY string into its parts.
func splitDate(date string) (day, month, year string, ok bool) {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// MonthBucket returns the MM/YYYY bucket for a DD/MM/YYYY date.
func MonthBucket(date string) (string, bool) {
	_, m, y, ok := splitDate(date)
	if !ok {
		return "", false
	}
	return m + "/" + y, true
}

// YearMonth returns the YYYY-MM form of a DD/MM/YYYY date, as produced by a
// month picker.
func YearMonth(date string) (string, bool) {
	_, m, y, ok := splitDate(date)
	if !ok {
		return "", false
	}
	return y + "-" + m, true
}
