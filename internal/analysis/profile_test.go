package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
)

func parse(t *testing.T, text string) *ingest.Result {
	t.Helper()
	res, err := ingest.Parse(text, ingest.DefaultOptions())
	require.NoError(t, err)
	return res
}

func TestProfileInfersKinds(t *testing.T) {
	rep := Profile("sample.csv", parse(t, ingest.SampleCSV), DefaultOptions())
	require.Len(t, rep.Cols, 7)
	kinds := map[string]string{}
	for _, c := range rep.Cols {
		kinds[c.Name] = c.Kind
	}
	assert.Equal(t, "datetime", kinds["Date"])
	assert.Equal(t, "numeric", kinds["Close"])
	assert.Equal(t, "numeric", kinds["Volume"])
	assert.Equal(t, "categorical", kinds["Symbol"])
	assert.Equal(t, 3, rep.Rows)
	assert.Empty(t, rep.Warnings)
}

func TestProfileSeriesSummary(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-01,1,1,1,100,1\n" +
		"2024-01-02,1,1,1,110,1\n" +
		"2024-01-03,1,1,1,99,1\n" +
		"2024-01-04,1,1,1,120,1"
	rep := Profile("", parse(t, csv), DefaultOptions())
	s := rep.Series
	assert.Equal(t, 4, s.Points)
	assert.Equal(t, 3, s.Returns)
	assert.Equal(t, 99.0, s.MinClose)
	assert.Equal(t, 120.0, s.MaxClose)
	assert.InDelta(t, 10.0, s.MaxDrawdown, 1e-9)
	// returns: +10%, -10%, +21.2121%
	assert.InDelta(t, (10.0-10.0+2100.0/99.0)/3, s.MeanReturn, 1e-9)
	assert.Greater(t, s.StdReturn, 0.0)
}

func TestProfileNotesPolicies(t *testing.T) {
	csv := "Date,Open,High,Low,Close,Volume\n" +
		"2024-01-01,1,1,1,100,1\n" +
		"garbage,1,1,1,100,1\n" +
		"2024-01-02,1,1,1,N/A,1\n" +
		"2024-01-03,1,1,1,101,1"
	rep := Profile("", parse(t, csv), DefaultOptions())
	require.Len(t, rep.Warnings, 3)
	assert.Equal(t, "Close: 1 non-numeric value(s)", rep.Warnings[0])
	assert.Contains(t, rep.Warnings[1], ingest.DropRowsWithUnparseableDate)
	assert.Contains(t, rep.Warnings[2], ingest.CoerceInvalidNumericToZero)
}

func TestProfileCountsOutliers(t *testing.T) {
	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 1; i <= 20; i++ {
		vol := 1000 + i
		if i == 20 {
			vol = 1_000_000
		}
		fmt.Fprintf(&b, "2024-02-%02d,1,1,1,%d,%d\n", i, 100+i%3, vol)
	}
	rep := Profile("", parse(t, b.String()), DefaultOptions())
	var vol ColumnSummary
	for _, c := range rep.Cols {
		if c.Name == "Volume" {
			vol = c
		}
	}
	assert.Equal(t, 1, vol.OutliersCount)
	assert.Equal(t, 3.5, vol.OutlierThreshold)
}

func TestMarkdownSections(t *testing.T) {
	opt := DefaultOptions()
	opt.SampleRows = 2
	rep := Profile("prices.csv", parse(t, ingest.SampleCSV), opt)
	md := rep.Markdown()
	for _, s := range []string{"[DATASET SUMMARY]", "[SCHEMA]", "[SERIES]", "[HEAD AND SAMPLE ROWS]", "File: prices.csv", "symbols: AAPL"} {
		assert.Contains(t, md, s)
	}
	assert.NotContains(t, md, "[NOTES]")
	assert.Len(t, rep.Samples, 2)
}

func TestMedianMAD(t *testing.T) {
	m, mad := medianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, m)
	assert.Equal(t, 1.0, mad)
}
