package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/KaramelBytes/tickerloom-cli/internal/ingest"
	"github.com/KaramelBytes/tickerloom-cli/internal/source"
)

// Error codes returned in APIError.ErrorCode.
const (
	CodeInvalidFormat    = "INVALID_FORMAT"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedType  = "UNSUPPORTED_MEDIA_TYPE"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError is the error body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// errorResponse wraps APIError in the response envelope.
type errorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

func (e *errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Error.StatusCode)
	return nil
}

// toAPIError maps pipeline and loader errors onto HTTP statuses.
func toAPIError(err error) *APIError {
	var (
		apiErr  *APIError
		fmtErr  *ingest.FormatError
		sizeErr *source.FileTooLargeError
		maxErr  *http.MaxBytesError
		insErr  *ingest.InsufficientDataError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &fmtErr):
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  CodeInvalidFormat,
			Message:    fmtErr.Error(),
			Details:    map[string]any{"missing": fmtErr.Missing},
		}
	case errors.As(err, &insErr):
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			ErrorCode:  CodeInsufficientData,
			Message:    insErr.Error(),
			Details:    map[string]any{"points": insErr.Points, "required": ingest.MinSeriesPoints},
		}
	case errors.As(err, &sizeErr):
		return &APIError{
			StatusCode: http.StatusRequestEntityTooLarge,
			ErrorCode:  CodePayloadTooLarge,
			Message:    sizeErr.Error(),
			Details:    map[string]any{"max_size": sizeErr.Limit},
		}
	case errors.As(err, &maxErr):
		return &APIError{
			StatusCode: http.StatusRequestEntityTooLarge,
			ErrorCode:  CodePayloadTooLarge,
			Message:    "Request body exceeds maximum allowed size",
			Details:    map[string]any{"max_size": maxErr.Limit},
		}
	case errors.Is(err, source.ErrUnsupportedFormat):
		return &APIError{
			StatusCode: http.StatusUnsupportedMediaType,
			ErrorCode:  CodeUnsupportedType,
			Message:    source.ErrUnsupportedFormat.Error(),
		}
	}
	return &APIError{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  CodeInternal,
		Message:    err.Error(),
	}
}
