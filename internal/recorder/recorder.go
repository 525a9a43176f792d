// Package recorder keeps a local history of ingestion runs.
package recorder

import (
	"context"
	"math"
	"time"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
)

// Entry is one recorded ingestion. Failed runs carry Error and zero stats.
type Entry struct {
	ID            int64     `json:"id"`
	RecordedAt    time.Time `json:"recordedAt"`
	Source        string    `json:"source"`
	Rows          int       `json:"rows"`
	Points        int       `json:"points"`
	Dropped       int       `json:"dropped"`
	Coerced       int       `json:"coerced"`
	Symbols       []string  `json:"symbols,omitempty"`
	DateRange     string    `json:"dateRange,omitempty"`
	CurrentPrice  float64   `json:"currentPrice"`
	ChangePercent *float64  `json:"changePercent"` // nil when undefined
	Error         string    `json:"error,omitempty"`
}

// FromResult summarizes a successful run of source.
func FromResult(source string, res *ingest.Result) Entry {
	return Entry{
		Source:        source,
		Rows:          len(res.Rows),
		Points:        res.Series.Len(),
		Dropped:       res.Series.Dropped,
		Coerced:       res.Series.Coerced,
		Symbols:       res.Series.Symbols,
		DateRange:     res.Stats.DateRange,
		CurrentPrice:  res.Stats.CurrentPrice,
		ChangePercent: finitePtr(res.Stats.ChangePercent),
	}
}

func finitePtr(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// FromError records a failed run of source. A nil err yields an entry with
// only Source set.
func FromError(source string, err error) Entry {
	if err == nil {
		return Entry{Source: source}
	}
	return Entry{Source: source, Error: err.Error()}
}

// Recorder persists ingestion history.
type Recorder interface {
	RecordIngestion(ctx context.Context, e Entry) error
	Recent(ctx context.Context, n int) ([]Entry, error)
	Close() error
}
