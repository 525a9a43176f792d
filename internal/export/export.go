// Package export writes an extracted close series to disk as csv, json or parquet.
package export

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
)

// Point is one row of an exported series.
type Point struct {
	Date   string  `json:"date" parquet:"date"`
	Close  float64 `json:"close" parquet:"close"`
	Symbol string  `json:"symbol,omitempty" parquet:"symbol,optional"`
}

// Writer saves points to path in one format.
type Writer interface {
	Save(points []Point, path string) error
	Extension() string
}

// Formats lists the accepted format names.
var Formats = []string{"csv", "json", "parquet"}

// NewWriter returns the Writer for format, or nil when format is unknown.
func NewWriter(format string) Writer {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVWriter{}
	case "json":
		return JSONWriter{}
	case "parquet":
		return ParquetWriter{}
	default:
		return nil
	}
}

// Points flattens s. A single symbol is stamped on every point; with several
// symbols the column is left empty since rows are not attributed.
func Points(s ingest.Series) []Point {
	sym := ""
	if len(s.Symbols) == 1 {
		sym = s.Symbols[0]
	}
	out := make([]Point, s.Len())
	for i := range out {
		out[i] = Point{Date: s.Dates[i], Close: s.Closes[i], Symbol: sym}
	}
	return out
}

// Save writes s to path using format.
func Save(s ingest.Series, format, path string) error {
	w := NewWriter(format)
	if w == nil {
		return fmt.Errorf("unsupported export format %q (use: %s)", format, strings.Join(Formats, ", "))
	}
	return w.Save(Points(s), path)
}
