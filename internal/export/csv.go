package export

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSVWriter writes a date,close[,symbol] file.
type CSVWriter struct{}

func (CSVWriter) Extension() string { return "csv" }

func (CSVWriter) Save(points []Point, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	withSymbol := len(points) > 0 && points[0].Symbol != ""
	w := csv.NewWriter(f)
	header := []string{"date", "close"}
	if withSymbol {
		header = append(header, "symbol")
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range points {
		rec := []string{p.Date, strconv.FormatFloat(p.Close, 'f', -1, 64)}
		if withSymbol {
			rec = append(rec, p.Symbol)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
