package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientData is matched by InsufficientDataError through errors.Is.
var ErrInsufficientData = errors.New("insufficient data")

// FormatError rejects a whole table because required header columns are absent.
type FormatError struct {
	Missing []string
}

func (e *FormatError) Error() string {
	return "Missing required columns: " + strings.Join(e.Missing, ", ")
}

// InsufficientDataError reports a series too short to derive statistics from.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d rows with a valid date, got %d", MinSeriesPoints, e.Points)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}
