// internal/handlers/generate-text/handler.go
package generatetext

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	apperrors "gemini-gateway/internal/common/errors"
	apphttp "gemini-gateway/internal/common/http"
	"gemini-gateway/internal/common/llm"
	"gemini-gateway/internal/common/logger"
	"gemini-gateway/internal/common/metrics"
	"gemini-gateway/internal/common/validation"
	"gemini-gateway/internal/models"
)

const (
	Endpoint = "generate-text"

	PromptRequiredMessage = "Prompt is required"
	PromptTypeMessage     = "Prompt must be a string"
)

type Handler struct {
	config    *Config
	generator llm.Generator
	logger    logger.Logger
	errors    *apperrors.ErrorHandler
	validator *validation.Validator
}

type HandlerOptions struct {
	Config    *Config
	Generator llm.Generator
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("%s: generator is required", Endpoint)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Endpoint, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json", "")
	}
	log = log.WithFields(map[string]interface{}{
		"endpoint": Endpoint,
		"modality": string(models.ModalityText),
	})

	validator, err := validation.NewValidator(GetInputSchema())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Endpoint, err)
	}

	return &Handler{
		config:    cfg,
		generator: opts.Generator,
		logger:    log,
		errors:    apperrors.NewErrorHandler(log),
		validator: validator,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	input, err := h.parseInput(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Processing text generation request", map[string]interface{}{
		"requestId":    apphttp.RequestID(r.Context()),
		"promptLength": len(input.Prompt),
	})

	output, err := h.Execute(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := apphttp.WriteOutput(w, output); err != nil {
		h.logger.Warn("Failed to write response", map[string]interface{}{
			"requestId": apphttp.RequestID(r.Context()),
			"error":     err.Error(),
		})
		return
	}

	h.logger.Info("Text generation completed", map[string]interface{}{
		"requestId":    apphttp.RequestID(r.Context()),
		"outputLength": len(output),
		"durationMs":   time.Since(start).Milliseconds(),
	})
}

// Execute sends the prompt as the only model input.
func (h *Handler) Execute(ctx context.Context, input *Input) (string, error) {
	return h.generator.Generate(ctx, llm.Text(input.Prompt))
}

// parseInput accepts a JSON or urlencoded body. Anything that does not yield a
// non-empty string prompt is rejected before the generator is called.
func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var document interface{}
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(h.config.MaxBodyBytes)
			if r.MultipartForm != nil {
				defer r.MultipartForm.RemoveAll()
			}
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return nil, bodyError(err)
		}
		fields := map[string]interface{}{}
		if values, ok := r.PostForm["prompt"]; ok && len(values) > 0 {
			fields["prompt"] = values[0]
		}
		document = fields
	case "", "application/json":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			document = map[string]interface{}{}
			break
		}
		if err := json.Unmarshal(raw, &document); err != nil {
			return nil, apperrors.NewInvalidRequestBodyError(err)
		}
	default:
		// Unparsed body: behaves like a request without a prompt.
		document = map[string]interface{}{}
	}

	// null, false and 0 count as a missing prompt rather than a wrong type.
	if fields, ok := document.(map[string]interface{}); ok && isFalsy(fields["prompt"]) {
		delete(fields, "prompt")
	}

	result, err := h.validator.ValidateInput(document)
	if err != nil {
		return nil, apperrors.NewInvalidRequestBodyError(err)
	}
	if !result.Valid {
		h.logger.Debug("Input validation failed", map[string]interface{}{
			"requestId": apphttp.RequestID(r.Context()),
			"errors":    result.GetErrorMessages(),
		})
		for _, ve := range result.GetErrorsForField("prompt") {
			if ve.Code == "invalid_type" {
				return nil, apperrors.NewValidationError(PromptTypeMessage)
			}
		}
		return nil, apperrors.NewValidationError(PromptRequiredMessage)
	}

	prompt, _ := document.(map[string]interface{})["prompt"].(string)
	return &Input{Prompt: prompt}, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errors.HandleRequestError(w, r, Endpoint, err)
	metrics.RequestsFailed.WithLabelValues(Endpoint, string(stdErr.Code)).Inc()
}

func isFalsy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	}
	return false
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.NewPayloadTooLargeError(maxErr.Limit)
	}
	return apperrors.NewInvalidRequestBodyError(err)
}
