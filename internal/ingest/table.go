// Package ingest turns raw daily price tables into a closing-price series, derived
// statistics and a bounded preview. Every function here is pure: no I/O, no shared state.
package ingest

import (
	"strings"
)

// RequiredColumns must each appear, case-insensitively and as a substring, in at
// least one header field. "CloseAdjusted" therefore satisfies "Close".
var RequiredColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// Table is the raw split form of the input: a trimmed header and the data lines
// that follow it, untouched.
type Table struct {
	Header []string
	Lines  []string
}

// ParseTable splits text into header and data lines and validates the header.
// It fails with *FormatError naming every required column that has no match.
func ParseTable(text string) (*Table, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	header := splitFields(lines[0])
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &FormatError{Missing: missing}
	}
	return &Table{Header: header, Lines: lines[1:]}, nil
}

// Rows aligns each data line with the header by position. Lines shorter than the
// header leave the trailing fields absent; extra values are dropped.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.Lines))
	for _, line := range t.Lines {
		values := splitFields(line)
		row := make(Row, len(t.Header))
		for i, name := range t.Header {
			if i >= len(values) {
				break
			}
			row[name] = values[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func missingColumns(header []string) []string {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(h)
	}
	var missing []string
	for _, col := range RequiredColumns {
		want := strings.ToLower(col)
		found := false
		for _, h := range lower {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return missing
}
