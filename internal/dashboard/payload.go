// Package dashboard assembles the JSON document the price dashboard renders:
// the ingested series and statistics plus the synthetic overlays and sentiment
// panel attached around them.
package dashboard

import (
	"math"
	"strconv"
	"time"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/synth"
)

// Number is a float64 that encodes NaN and ±Inf as JSON null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN.
func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// StockData is the chart block of the payload.
type StockData struct {
	Dates         []string  `json:"dates"`
	Actual        []float64 `json:"actual"`
	LSTM          []float64 `json:"lstm"`
	RandomForest  []float64 `json:"randomForest"`
	Hybrid        []float64 `json:"hybrid"`
	CurrentPrice  Number    `json:"currentPrice"`
	Change        Number    `json:"change"`
	ChangePercent Number    `json:"changePercent"`
}

// Payload is the full dashboard document.
type Payload struct {
	StockData     StockData       `json:"stockData"`
	SentimentData synth.Sentiment `json:"sentimentData"`
	TotalRecords  int             `json:"totalRecords,omitempty"`
	DateRange     string          `json:"dateRange,omitempty"`
	Symbols       []string        `json:"symbols"`
	Columns       []string        `json:"columns"`
	SampleRows    []ingest.Row    `json:"sampleRows"`
}

// Build decorates an ingestion result with overlays and sentiment from gen.
func Build(res *ingest.Result, gen *synth.Generator) Payload {
	o := gen.Overlay(res.Series.Closes)
	return Payload{
		StockData: StockData{
			Dates:         res.Series.Dates,
			Actual:        res.Series.Closes,
			LSTM:          o.LSTM,
			RandomForest:  o.RandomForest,
			Hybrid:        o.Hybrid,
			CurrentPrice:  Number(res.Stats.CurrentPrice),
			Change:        Number(res.Stats.Change),
			ChangePercent: Number(res.Stats.ChangePercent),
		},
		SentimentData: gen.Sentiment(),
		TotalRecords:  res.Preview.TotalRecords,
		DateRange:     res.Stats.DateRange,
		Symbols:       orEmpty(res.Preview.Symbols),
		Columns:       orEmpty(res.Preview.Columns),
		SampleRows:    orEmpty(res.Preview.SampleRows),
	}
}

// orEmpty keeps list fields encoding as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Demo builds the payload shown before any upload: a generated walk for symbol
// ending on now, with the per-symbol sentiment panel.
func Demo(symbol string, days int, now time.Time, gen *synth.Generator) (Payload, error) {
	d := gen.Demo(symbol, days, now)
	st, err := ingest.Derive(ingest.Series{Dates: d.Dates, Closes: d.Actual})
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		StockData: StockData{
			Dates:         d.Dates,
			Actual:        d.Actual,
			LSTM:          d.Overlay.LSTM,
			RandomForest:  d.Overlay.RandomForest,
			Hybrid:        d.Overlay.Hybrid,
			CurrentPrice:  Number(st.CurrentPrice),
			Change:        Number(st.Change),
			ChangePercent: Number(st.ChangePercent),
		},
		SentimentData: synth.SymbolSentiment(symbol),
		DateRange:     st.DateRange,
		Symbols:       []string{symbol},
		Columns:       []string{},
		SampleRows:    []ingest.Row{},
	}, nil
}
