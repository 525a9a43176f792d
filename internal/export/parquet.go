package export

import (
	"github.com/parquet-go/parquet-go"
)

// ParquetWriter writes points as a parquet file.
type ParquetWriter struct{}

func (ParquetWriter) Extension() string { return "parquet" }

func (ParquetWriter) Save(points []Point, path string) error {
	return parquet.WriteFile(path, points)
}
