// Package source turns uploaded files into the comma-separated text the ingest
// pipeline reads. Loaders are picked by file name through a small registry.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxBytes caps uploads at 10 MiB.
const DefaultMaxBytes int64 = 10 << 20

// ErrUnsupportedFormat is returned when no loader accepts the file name.
var ErrUnsupportedFormat = errors.New("Please upload a CSV file")

// FileTooLargeError reports an input above Options.MaxBytes.
type FileTooLargeError struct {
	Name  string
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s exceeds the maximum file size of %d bytes", e.Name, e.Limit)
}

// Options controls loading.
type Options struct {
	// MaxBytes limits input size; <= 0 uses DefaultMaxBytes.
	MaxBytes int64
	// Sheet selects a worksheet by name for spreadsheet inputs; empty means the first sheet.
	Sheet string
}

// Loader converts one file format into delimited text.
type Loader interface {
	CanLoad(filename string) bool
	Load(content []byte, opt Options) (string, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// Supported reports whether some loader accepts filename.
func Supported(filename string) bool {
	return lookup(filename) != nil
}

func lookup(filename string) Loader {
	for _, l := range registry {
		if l.CanLoad(filename) {
			return l
		}
	}
	return nil
}

// LoadFile reads path and converts it with the matching loader.
func LoadFile(path string, opt Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f, opt)
}

// Read consumes r, enforcing the size limit, and converts it with the loader
// registered for name.
func Read(name string, r io.Reader, opt Options) (string, error) {
	l := lookup(name)
	if l == nil {
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	limit := opt.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if n > limit {
		return "", &FileTooLargeError{Name: name, Limit: limit}
	}
	return l.Load(buf.Bytes(), opt)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
