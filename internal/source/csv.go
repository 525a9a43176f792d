package source

import (
	"bytes"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// Load strips a UTF-8 BOM and normalizes line endings; everything else is left
// to the ingest pipeline.
func (csvLoader) Load(content []byte, _ Options) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}
