package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Extract applies two permissive cell policies. Both are always on and have no
// error path; Series counts how often each fired.
const (
	// DropRowsWithUnparseableDate excludes a row whose date cannot be read from
	// dates, closes and symbols alike.
	DropRowsWithUnparseableDate = "drop-rows-with-unparseable-date"
	// CoerceInvalidNumericToZero stores 0 for a close that is absent, non-numeric
	// or not finite.
	CoerceInvalidNumericToZero = "coerce-invalid-numeric-to-zero"
)

// DateLayout is the normalized form of every entry in Series.Dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Series holds dates and closing prices in encounter order plus the symbols seen
// on rows with a valid date.
type Series struct {
	Dates   []string  `json:"dates"`
	Closes  []float64 `json:"closes"`
	Symbols []string  `json:"symbols"`

	Dropped int `json:"dropped"`
	Coerced int `json:"coerced"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Dates) }

// Extract walks rows once and builds the series. Symbol collection happens only
// after the date check passes, so dropped rows never contribute a symbol.
func Extract(rows []Row) Series {
	s := Series{
		Dates:   []string{},
		Closes:  []float64{},
		Symbols: []string{},
	}
	seen := make(map[string]struct{})
	for _, row := range rows {
		raw, _ := row.date()
		date, ok := NormalizeDate(raw)
		if !ok {
			s.Dropped++
			continue
		}
		s.Dates = append(s.Dates, date)

		rawClose, _ := row.closing()
		price, ok := ParsePrice(rawClose)
		if !ok {
			s.Coerced++
		}
		s.Closes = append(s.Closes, price)

		if sym, ok := row.symbol(); ok {
			if _, dup := seen[sym]; !dup {
				seen[sym] = struct{}{}
				s.Symbols = append(s.Symbols, sym)
			}
		}
	}
	return s
}

// NormalizeDate parses raw against the accepted layouts and returns its UTC
// calendar date as YYYY-MM-DD. Zone-less inputs are read as UTC.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t.UTC().Format(DateLayout), true
		}
	}
	return "", false
}

// ParsePrice reads raw as a float. On failure it returns 0 and false.
func ParsePrice(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
