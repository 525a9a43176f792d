package ingest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSampleRoundTrip(t *testing.T) {
	res, err := Parse(SampleCSV, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Preview.TotalRecords)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Volume", "Symbol"}, res.Preview.Columns)
	assert.Equal(t, []string{"AAPL"}, res.Preview.Symbols)
	assert.Equal(t, []float64{154.50, 157.25, 159.80}, res.Series.Closes)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, res.Series.Dates)

	assert.Equal(t, 159.80, res.Stats.CurrentPrice)
	assert.InDelta(t, 2.55, res.Stats.Change, 1e-9)
	assert.InDelta(t, 1.6216, res.Stats.ChangePercent, 1e-3)
	assert.Equal(t, "2024-01-01 to 2024-01-03", res.Stats.DateRange)
}

func TestParseTableMissingColumns(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   []string
	}{
		{"one missing", "Date,Open,High,Low,Close", []string{"Volume"}},
		{"several missing", "Date,Close", []string{"Open", "High", "Low", "Volume"}},
		{"all missing", "foo,bar", []string{"Date", "Open", "High", "Low", "Close", "Volume"}},
		{"empty input", "", []string{"Date", "Open", "High", "Low", "Close", "Volume"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTable(tc.header + "\n2024-01-01,1,1,1,1,1")
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.want, fe.Missing)
			assert.Equal(t, "Missing required columns: "+strings.Join(tc.want, ", "), err.Error())
		})
	}
}

func TestParseTableSubstringCaseInsensitive(t *testing.T) {
	tbl, err := ParseTable(" trade_DATE , open_px,HIGH,low,CloseAdjusted,volume \n")
	require.NoError(t, err)
	assert.Equal(t, []string{"trade_DATE", "open_px", "HIGH", "low", "CloseAdjusted", "volume"}, tbl.Header)
	assert.Empty(t, tbl.Lines)
}

func TestRowsAlignByPosition(t *testing.T) {
	tbl, err := ParseTable("Date,Open,High,Low,Close,Volume\n2024-01-01, 1 ,2\n2024-01-02,1,2,3,4,5,6,7\r\n")
	require.NoError(t, err)
	rows := tbl.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, Row{"Date": "2024-01-01", "Open": "1", "High": "2"}, rows[0])
	_, present := rows[0]["Close"]
	assert.False(t, present, "short rows leave trailing fields absent")
	assert.Equal(t, "5", rows[1]["Volume"])
	assert.Len(t, rows[1], 6)
}

func TestRowGetFallbackOrder(t *testing.T) {
	r := Row{"Date": "", "date": "2024-02-01", "Close": "10", "close": "11"}

	v, ok := r.Get("Date", "date")
	assert.True(t, ok)
	assert.Equal(t, "2024-02-01", v)

	v, ok = r.Get("Close", "close")
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	_, ok = r.Get("Symbol", "symbol")
	assert.False(t, ok)
}

func TestInvalidDateRowExcludedButCounted(t *testing.T) {
	text := SampleCSV + "\nnot-a-date,1,1,1,100,1,AAPL"
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Preview.TotalRecords)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, res.Series.Dates)
	assert.NotContains(t, res.Series.Closes, 100.0)
	assert.Equal(t, 1, res.Series.Dropped)
}

func TestNonNumericCloseCoercesToZero(t *testing.T) {
	text := SampleCSV + "\n2024-01-04,1,1,1,N/A,1,AAPL"
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Series.Closes, 4)
	assert.Equal(t, 0.0, res.Series.Closes[3])
	assert.Equal(t, 1, res.Series.Coerced)
	assert.Equal(t, 0.0, res.Stats.CurrentPrice)
	assert.InDelta(t, -100.0, res.Stats.ChangePercent, 1e-9)
}

func TestSymbolsGatedOnDateValidity(t *testing.T) {
	text := strings.Join([]string{
		"Date,Open,High,Low,Close,Volume,Symbol",
		"2024-01-01,1,1,1,10,1,AAPL",
		"bogus,1,1,1,10,1,MSFT",
		"2024-01-02,1,1,1,11,1,NVDA",
		"2024-01-03,1,1,1,12,1,AAPL",
		"2024-01-04,1,1,1,13,1,",
	}, "\n")
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, res.Preview.Symbols)
}

func TestLowercaseFieldFallback(t *testing.T) {
	text := "date,open,high,low,close,volume,symbol\n2024-03-01,1,1,1,5,1,tsla\n2024-03-02,1,1,1,6,1,tsla"
	res, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, res.Series.Closes)
	assert.Equal(t, []string{"tsla"}, res.Series.Symbols)
}

func TestSubstringHeaderDoesNotFeedValueLookup(t *testing.T) {
	// "Trade Date" passes validation but Extract only reads Date/date.
	text := "Trade Date,Open,High,Low,Close,Volume\n2024-01-01,1,1,1,1,1\n2024-01-02,1,1,1,2,1"
	_, err := Parse(text, DefaultOptions())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
	var ie *InsufficientDataError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, ie.Points)
}

func TestParseIsIdempotent(t *testing.T) {
	text := SampleCSV + "\nnot-a-date,1,1,1,100,1,AAPL\n2024-01-05,1,1,1,N/A,1,MSFT"
	a, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	b, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleRowsBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close,Volume\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "2024-02-%02d,1,1,1,%d,1\n", (i%28)+1, i)
	}
	res, err := Parse(sb.String(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Preview.SampleRows, 10)
	assert.Equal(t, res.Rows[:10], res.Preview.SampleRows)
	assert.Equal(t, "0", res.Preview.SampleRows[0]["Close"])
	assert.Equal(t, "9", res.Preview.SampleRows[9]["Close"])
	assert.Equal(t, 50, res.Preview.TotalRecords)
}

func TestSampleRowsOption(t *testing.T) {
	res, err := Parse(SampleCSV, Options{SampleRows: 2})
	require.NoError(t, err)
	assert.Len(t, res.Preview.SampleRows, 2)
}

func TestDeriveInsufficientData(t *testing.T) {
	for _, n := range []int{0, 1} {
		s := Series{Dates: make([]string, n), Closes: make([]float64, n)}
		_, err := Derive(s)
		require.ErrorIs(t, err, ErrInsufficientData)
	}
}

func TestDeriveZeroPreviousPropagates(t *testing.T) {
	st, err := Derive(Series{Dates: []string{"2024-01-01", "2024-01-02"}, Closes: []float64{0, 5}})
	require.NoError(t, err)
	assert.True(t, math.IsInf(st.ChangePercent, 1))

	st, err = Derive(Series{Dates: []string{"2024-01-01", "2024-01-02"}, Closes: []float64{0, 0}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(st.ChangePercent))
}

func TestDateRangeDoesNotReorderSeries(t *testing.T) {
	s := Series{
		Dates:  []string{"2024-01-03", "2024-01-01", "2024-01-02"},
		Closes: []float64{3, 1, 2},
	}
	st, err := Derive(s)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 to 2024-01-03", st.DateRange)
	assert.Equal(t, []string{"2024-01-03", "2024-01-01", "2024-01-02"}, s.Dates)
	assert.Equal(t, 2.0, st.CurrentPrice)
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-05":                "2024-01-05",
		"2024-01-05T23:30:00Z":      "2024-01-05",
		"2024-01-05T23:30:00-05:00": "2024-01-06",
		"2024/01/05":                "2024-01-05",
		"01/05/2024":                "2024-01-05",
		"1/5/2024":                  "2024-01-05",
		"Jan 5, 2024":               "2024-01-05",
		"2024-01-05 09:30:00":       "2024-01-05",
	}
	for in, want := range cases {
		got, ok := NormalizeDate(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "not-a-date", "2024-13-01", "2024-02-30"} {
		_, ok := NormalizeDate(bad)
		assert.False(t, ok, bad)
	}
}

func TestParsePrice(t *testing.T) {
	v, ok := ParsePrice(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	for _, bad := range []string{"", "N/A", "NaN", "Inf", "12.5USD"} {
		v, ok := ParsePrice(bad)
		assert.False(t, ok, bad)
		assert.Equal(t, 0.0, v, bad)
	}
}
