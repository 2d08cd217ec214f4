package models

import (
	"fmt"
	"net/http"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidURL        = "INVALID_URL"
	ErrCodeUnsupportedScheme = "UNSUPPORTED_SCHEME"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeNotHTML           = "NOT_HTML"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeUnexpected        = "UNEXPECTED"

	// API-layer codes that never originate in the fetch pipeline.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// Messages surfaced verbatim to API callers.
const (
	MsgURLRequired       = "URL is required"
	MsgInvalidURL        = "Invalid URL format"
	MsgUnsupportedScheme = "Only HTTP and HTTPS URLs are supported"
	MsgNotHTML           = "URL does not return HTML content"
	MsgTimeout           = "Request timed out"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PreviewError is the internal error type carrying a classification code.
// It implements the error interface and supports error wrapping via Unwrap.
type PreviewError struct {
	Code    string
	Message string

	// UpstreamStatus is the HTTP status returned by the previewed site.
	// Only set for ErrCodeFetchFailed.
	UpstreamStatus int

	Err error // wrapped original error
}

func (e *PreviewError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PreviewError) Unwrap() error {
	return e.Err
}

// NewPreviewError creates a new PreviewError.
func NewPreviewError(code, message string, err error) *PreviewError {
	return &PreviewError{Code: code, Message: message, Err: err}
}

// NewFetchFailedError classifies a non-2xx upstream response.
func NewFetchFailedError(status int, statusText string) *PreviewError {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return &PreviewError{
		Code:           ErrCodeFetchFailed,
		Message:        fmt.Sprintf("Failed to fetch URL: %d %s", status, statusText),
		UpstreamStatus: status,
	}
}

// ToResponse converts an internal error to the API-facing body.
func (e *PreviewError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code}
}

// HTTPStatus translates the error code to the status the API responds with.
func (e *PreviewError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidURL, ErrCodeUnsupportedScheme, ErrCodeFetchFailed,
		ErrCodeNotHTML, ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case ErrCodeTimeout:
		return http.StatusRequestTimeout // 408
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
