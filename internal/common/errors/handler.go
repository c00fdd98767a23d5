// internal/common/errors/handler.go
package errors

import (
	"net/http"

	apphttp "gemini-gateway/internal/common/http"
)

// ErrorHandler turns handler errors into logged, JSON encoded responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleRequestError normalizes err, logs it and writes the {"error": ...}
// body. The normalized error is returned so callers can label metrics.
func (h *ErrorHandler) HandleRequestError(w http.ResponseWriter, r *http.Request, endpoint string, err error) *StandardError {
	stdErr := Normalize(err)
	status := stdErr.HTTPStatus()

	h.logError(r, endpoint, stdErr, status)

	if writeErr := apphttp.WriteErrorMessage(w, status, stdErr.ClientMessage()); writeErr != nil {
		h.logger.Error("Failed to write error response", map[string]interface{}{
			"endpoint": endpoint,
			"error":    writeErr.Error(),
		})
	}
	return stdErr
}

func (h *ErrorHandler) logError(r *http.Request, endpoint string, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"endpoint":      endpoint,
		"requestId":     apphttp.RequestID(r.Context()),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}

	if status < http.StatusInternalServerError {
		h.logger.Warn("Request rejected", fields)
		return
	}
	h.logger.Error("Request failed", fields)
}
