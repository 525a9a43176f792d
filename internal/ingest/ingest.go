package ingest

// DefaultSampleRows is the preview size used when Options.SampleRows is not set.
const DefaultSampleRows = 10

// SampleCSV is the three-row example offered to users as a format template.
const SampleCSV = `Date,Open,High,Low,Close,Volume,Symbol
2024-01-01,150.00,155.00,149.00,154.50,1000000,AAPL
2024-01-02,154.50,158.00,153.00,157.25,1200000,AAPL
2024-01-03,157.25,160.00,156.00,159.80,1100000,AAPL`

// Options controls the parts of ingestion that are not fixed by the input format.
type Options struct {
	// SampleRows bounds Preview.SampleRows; values <= 0 use DefaultSampleRows.
	SampleRows int
}

// DefaultOptions returns the options used by the dashboard.
func DefaultOptions() Options {
	return Options{SampleRows: DefaultSampleRows}
}

// Preview is the display-oriented view of a parsed table.
type Preview struct {
	TotalRecords int      `json:"totalRecords"`
	Columns      []string `json:"columns"`
	SampleRows   []Row    `json:"sampleRows"`
	Symbols      []string `json:"symbols"`
}

// Result bundles everything one ingestion produces.
type Result struct {
	Header  []string
	Rows    []Row
	Series  Series
	Stats   Stats
	Preview Preview
}

// Assemble builds the preview. TotalRecords counts every data row, including
// the ones Extract dropped.
func Assemble(rows []Row, header []string, s Series, opt Options) Preview {
	n := opt.SampleRows
	if n <= 0 {
		n = DefaultSampleRows
	}
	if n > len(rows) {
		n = len(rows)
	}
	sample := make([]Row, n)
	copy(sample, rows[:n])
	cols := make([]string, len(header))
	copy(cols, header)
	syms := make([]string, len(s.Symbols))
	copy(syms, s.Symbols)
	return Preview{
		TotalRecords: len(rows),
		Columns:      cols,
		SampleRows:   sample,
		Symbols:      syms,
	}
}

// Parse runs the whole pipeline: header validation, row alignment, series
// extraction, statistics and preview. It fails with *FormatError or
// *InsufficientDataError and with nothing else.
func Parse(text string, opt Options) (*Result, error) {
	tbl, err := ParseTable(text)
	if err != nil {
		return nil, err
	}
	rows := tbl.Rows()
	series := Extract(rows)
	stats, err := Derive(series)
	if err != nil {
		return nil, err
	}
	return &Result{
		Header:  tbl.Header,
		Rows:    rows,
		Series:  series,
		Stats:   stats,
		Preview: Assemble(rows, tbl.Header, series, opt),
	}, nil
}
