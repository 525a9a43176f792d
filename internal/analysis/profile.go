package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
)

// Options controls profiling of an ingested price table.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for dataset analysis.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a price table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Series   SeriesSummary
	Samples  [][]string
	Warnings []string
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text|unknown
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// SeriesSummary describes the close series the dashboard plots.
type SeriesSummary struct {
	Points        int
	Dropped       int
	Coerced       int
	DateRange     string
	Symbols       []string
	CurrentPrice  float64
	Change        float64
	ChangePercent float64
	MinClose      float64
	MaxClose      float64
	// Simple one-step returns in percent; zero previous closes are skipped.
	Returns     int
	MeanReturn  float64
	StdReturn   float64
	MaxDrawdown float64 // percent, peak to trough
}

// Profile summarizes every column of res and its close series.
func Profile(name string, res *ingest.Result, opt Options) *Report {
	rep := &Report{Name: name, Rows: len(res.Rows)}

	type colAcc struct {
		name   string
		nonNil int
		miss   int
		// numeric stats via Welford
		n      int
		mean   float64
		m2     float64
		min    float64
		max    float64
		numCnt int
		dtCnt  int
		txtCnt int
		cats   map[string]int
		vals   []float64
	}
	cols := make([]*colAcc, len(res.Header))
	for i, h := range res.Header {
		cols[i] = &colAcc{name: h, min: math.Inf(1), max: math.Inf(-1), cats: make(map[string]int)}
	}

	sampleRows := opt.SampleRows
	for _, row := range res.Rows {
		vals := row.Values(res.Header)
		if len(rep.Samples) < sampleRows {
			rep.Samples = append(rep.Samples, vals)
		}
		for j, v := range vals {
			c := cols[j]
			if v == "" {
				c.miss++
				continue
			}
			c.nonNil++
			if x, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
				c.numCnt++
				c.n++
				if x < c.min {
					c.min = x
				}
				if x > c.max {
					c.max = x
				}
				delta := x - c.mean
				c.mean += delta / float64(c.n)
				c.m2 += delta * (x - c.mean)
				c.vals = append(c.vals, x)
				continue
			}
			if _, ok := ingest.NormalizeDate(v); ok {
				c.dtCnt++
				continue
			}
			c.txtCnt++
			if len(c.cats) <= 10000 && len(v) <= 64 {
				c.cats[v]++
			}
		}
	}

	rep.Cols = make([]ColumnSummary, 0, len(cols))
	for _, c := range cols {
		s := ColumnSummary{Name: c.name, NonNull: c.nonNil, Missing: c.miss}
		kind := "unknown"
		if c.numCnt >= c.dtCnt && c.numCnt >= c.txtCnt && c.numCnt > 0 {
			kind = "numeric"
			s.Min, s.Max, s.Mean = c.min, c.max, c.mean
			if c.n > 1 {
				s.Std = math.Sqrt(c.m2 / float64(c.n-1))
			}
			if opt.Outliers && len(c.vals) >= 8 {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(c.vals, opt.OutlierThreshold)
			}
			if c.txtCnt > 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d non-numeric value(s)", c.name, c.txtCnt))
			}
		} else if c.dtCnt >= c.txtCnt && c.dtCnt > 0 {
			kind = "datetime"
		} else if len(c.cats) > 0 {
			kind = "categorical"
			tops := make([]CategoryCount, 0, len(c.cats))
			for k, v := range c.cats {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			s.TopValues = tops
			s.Unique = len(c.cats)
		} else if c.txtCnt > 0 {
			kind = "text"
		}
		s.Kind = kind
		rep.Cols = append(rep.Cols, s)
	}

	rep.Series = summarizeSeries(res)
	if rep.Series.Dropped > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d row(s) dropped (%s)", rep.Series.Dropped, ingest.DropRowsWithUnparseableDate))
	}
	if rep.Series.Coerced > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d close value(s) set to 0 (%s)", rep.Series.Coerced, ingest.CoerceInvalidNumericToZero))
	}
	return rep
}

func summarizeSeries(res *ingest.Result) SeriesSummary {
	s := res.Series
	out := SeriesSummary{
		Points:        s.Len(),
		Dropped:       s.Dropped,
		Coerced:       s.Coerced,
		DateRange:     res.Stats.DateRange,
		Symbols:       s.Symbols,
		CurrentPrice:  res.Stats.CurrentPrice,
		Change:        res.Stats.Change,
		ChangePercent: res.Stats.ChangePercent,
		MinClose:      math.Inf(1),
		MaxClose:      math.Inf(-1),
	}
	var n int
	var mean, m2 float64
	peak := math.Inf(-1)
	for i, c := range s.Closes {
		out.MinClose = math.Min(out.MinClose, c)
		out.MaxClose = math.Max(out.MaxClose, c)
		if c > peak {
			peak = c
		}
		if peak > 0 {
			if dd := (peak - c) / peak * 100; dd > out.MaxDrawdown {
				out.MaxDrawdown = dd
			}
		}
		if i == 0 || s.Closes[i-1] == 0 {
			continue
		}
		r := (c - s.Closes[i-1]) / s.Closes[i-1] * 100
		n++
		delta := r - mean
		mean += delta / float64(n)
		m2 += delta * (r - mean)
	}
	out.Returns = n
	out.MeanReturn = mean
	if n > 1 {
		out.StdReturn = math.Sqrt(m2 / float64(n-1))
	}
	return out
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				count++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return count, maxAbsZ, thr
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	s := r.Series
	b.WriteString("\n[SERIES]\n")
	b.WriteString(fmt.Sprintf("- points: %d (dropped %d, coerced %d)\n", s.Points, s.Dropped, s.Coerced))
	b.WriteString(fmt.Sprintf("- range: %s\n", s.DateRange))
	if len(s.Symbols) > 0 {
		b.WriteString(fmt.Sprintf("- symbols: %s\n", strings.Join(s.Symbols, ", ")))
	}
	b.WriteString(fmt.Sprintf("- current: %.2f, change %+.2f (%+.3f%%)\n", s.CurrentPrice, s.Change, s.ChangePercent))
	b.WriteString(fmt.Sprintf("- close: min %.4g, max %.4g, max drawdown %.2f%%\n", s.MinClose, s.MaxClose, s.MaxDrawdown))
	if s.Returns > 0 {
		b.WriteString(fmt.Sprintf("- daily returns: n=%d, mean %.3f%%, std %.3f%%\n", s.Returns, s.MeanReturn, s.StdReturn))
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
