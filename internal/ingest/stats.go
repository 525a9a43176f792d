package ingest

import (
	"sort"
)

// MinSeriesPoints is the shortest series Derive accepts.
const MinSeriesPoints = 2

// Stats are the headline numbers derived from a series.
type Stats struct {
	CurrentPrice  float64 `json:"currentPrice"`
	PreviousPrice float64 `json:"previousPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	DateRange     string  `json:"dateRange"`
}

// Derive computes the last close, its one-step change and the covered date range.
// A zero previous close yields ±Inf or NaN for ChangePercent; it is not special-cased.
func Derive(s Series) (Stats, error) {
	n := len(s.Closes)
	if n < MinSeriesPoints || len(s.Dates) < MinSeriesPoints {
		return Stats{}, &InsufficientDataError{Points: min(n, len(s.Dates))}
	}
	cur := s.Closes[n-1]
	prev := s.Closes[n-2]
	change := cur - prev
	return Stats{
		CurrentPrice:  cur,
		PreviousPrice: prev,
		Change:        change,
		ChangePercent: change / prev * 100,
		DateRange:     DateRange(s.Dates),
	}, nil
}

// DateRange formats "<earliest> to <latest>" from ISO dates without reordering
// the caller's slice. It returns "" for an empty slice.
func DateRange(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	sorted := make([]string, len(dates))
	copy(sorted, dates)
	sort.Strings(sorted)
	return sorted[0] + " to " + sorted[len(sorted)-1]
}
