package export

import (
	"encoding/json"
	"os"
)

// JSONWriter writes an indented array of points.
type JSONWriter struct{}

func (JSONWriter) Extension() string { return "json" }

func (JSONWriter) Save(points []Point, path string) error {
	if points == nil {
		points = []Point{}
	}
	b, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
