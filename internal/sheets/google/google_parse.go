package google

import (
	"fmt"
	"strings"
)

// quoteSheet renders a sheet name for A1 notation; names containing spaces
// or quotes must be wrapped in single quotes with quotes doubled.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// columnsRange covers every column the dashboard sheets use.
func columnsRange(sheet string) string {
	return fmt.Sprintf("%s!A:Z", quoteSheet(sheet))
}

// anchorRange is the table anchor handed to append calls.
func anchorRange(sheet string) string {
	return fmt.Sprintf("%s!A1", quoteSheet(sheet))
}

// normalizeValues copies the API matrix into plain rows. Trailing empty
// cells are omitted by the API, so short rows are kept as they are; callers
// read missing cells as empty.
func normalizeValues(values [][]interface{}) [][]any {
	out := make([][]any, 0, len(values))
	for _, row := range values {
		r := make([]any, len(row))
		for i, v := range row {
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
			}
			r[i] = v
		}
		out = append(out, r)
	}
	return out
}
