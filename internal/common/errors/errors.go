// Package errors provides standardized error handling for the generation endpoints.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Client errors: reported before any external call is made.
const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodePayloadTooLarge    ErrorCode = "PAYLOAD_TOO_LARGE"
)

// Server errors: IO and generation service failures.
const (
	ErrCodeUploadFailed     ErrorCode = "UPLOAD_FAILED"
	ErrCodeFileReadFailed   ErrorCode = "FILE_READ_FAILED"
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	ErrCodeEmptyResponse    ErrorCode = "EMPTY_RESPONSE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to the response status.
func (e *StandardError) HTTPStatus() int {
	if e.Code == ErrCodePayloadTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	if IsClientError(e.Code) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ClientMessage is the text placed in the {"error": ...} body. Client errors
// carry their fixed message; server errors carry the underlying cause.
func (e *StandardError) ClientMessage() string {
	if IsClientError(e.Code) || e.Details == "" {
		return e.Message
	}
	return e.Details
}

// WithMetadata returns e after merging the given key/value pairs.
func (e *StandardError) WithMetadata(fields map[string]interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		e.Metadata[k] = v
	}
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError reports a missing or malformed required input. message
// is returned to the caller verbatim.
func NewValidationError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestBodyError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Invalid request body",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewPayloadTooLargeError(limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadTooLarge,
		Message:   fmt.Sprintf("Request body exceeds %d bytes", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUploadFailed,
		Message:   "Failed to store uploaded file",
		Details:   errString(err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewFileReadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFileReadFailed,
		Message:   "Failed to read file",
		Details:   errString(err),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Content generation failed",
		Details:   errString(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewEmptyResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyResponse,
		Message:   "Generation service returned no text",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// IsClientError reports whether the code is caused by the caller's input.
func IsClientError(code ErrorCode) bool {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidRequestBody, ErrCodePayloadTooLarge:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "TOO_LARGE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "UPLOAD") || strings.Contains(codeStr, "FILE"):
		return "IO"
	case strings.Contains(codeStr, "GENERATION") || strings.Contains(codeStr, "RESPONSE"):
		return "SERVICE"
	default:
		return "OTHER"
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
