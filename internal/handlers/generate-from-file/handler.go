// internal/handlers/generate-from-file/handler.go
package generatefromfile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gemini-gateway/internal/common/attachment"
	apperrors "gemini-gateway/internal/common/errors"
	apphttp "gemini-gateway/internal/common/http"
	"gemini-gateway/internal/common/llm"
	"gemini-gateway/internal/common/logger"
	"gemini-gateway/internal/common/metrics"
)

// Handler serves one file modality. The uploaded file lives on disk only for
// the duration of the request.
type Handler struct {
	modality  Modality
	config    *Config
	generator llm.Generator
	logger    logger.Logger
	errors    *apperrors.ErrorHandler

	// readUpload loads the stored file; replaced in tests.
	readUpload func(u *attachment.Upload, mediaType string) (*attachment.Attachment, error)
}

type HandlerOptions struct {
	Modality  Modality
	Config    *Config
	Generator llm.Generator
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Modality.Field == "" || opts.Modality.Endpoint == "" {
		return nil, fmt.Errorf("generate-from-file: modality is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("%s: generator is required", opts.Modality.Endpoint)
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", opts.Modality.Endpoint, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json", "")
	}
	log = log.WithFields(map[string]interface{}{
		"endpoint": opts.Modality.Endpoint,
		"modality": string(opts.Modality.Kind),
	})

	return &Handler{
		modality:   opts.Modality,
		config:     cfg,
		generator:  opts.Generator,
		logger:     log,
		errors:     apperrors.NewErrorHandler(log),
		readUpload: (*attachment.Upload).Attachment,
	}, nil
}

func (h *Handler) Modality() Modality { return h.modality }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := apphttp.RequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	upload, err := attachment.SaveUpload(r, h.modality.Field, h.config.UploadDir, h.config.MaxMemoryBytes)
	if err != nil {
		switch {
		case errors.Is(err, attachment.ErrNoFile):
			err = apperrors.NewValidationError(h.modality.MissingFileMessage)
		case errors.Is(err, attachment.ErrTooManyFiles):
			err = apperrors.NewValidationError(UnexpectedFieldMessage)
		}
		h.fail(w, r, err)
		return
	}
	defer func() {
		if releaseErr := upload.Release(); releaseErr != nil {
			h.logger.Warn("Failed to remove uploaded file", map[string]interface{}{
				"requestId": requestID,
				"path":      upload.Path,
				"error":     releaseErr.Error(),
			})
		}
	}()

	metrics.UploadBytes.WithLabelValues(string(h.modality.Kind)).Observe(float64(upload.Size))

	mediaType := h.modality.MediaType(upload.ContentType, upload.FileName)
	prompt := h.modality.Prompt(r.PostFormValue("prompt"))

	h.logger.Info("Processing file generation request", map[string]interface{}{
		"requestId":     requestID,
		"fileName":      upload.FileName,
		"size":          upload.Size,
		"mediaType":     mediaType,
		"defaultPrompt": prompt == h.modality.DefaultPrompt,
	})

	fileFields := map[string]interface{}{
		"fileName":  upload.FileName,
		"mediaType": mediaType,
	}

	att, err := h.readUpload(upload, mediaType)
	if err != nil {
		h.fail(w, r, apperrors.Normalize(err).WithMetadata(fileFields))
		return
	}

	output, err := h.Execute(r.Context(), &Input{Prompt: prompt, Attachment: att})
	if err != nil {
		h.fail(w, r, apperrors.Normalize(err).WithMetadata(fileFields))
		return
	}

	if err := apphttp.WriteOutput(w, output); err != nil {
		h.logger.Warn("Failed to write response", map[string]interface{}{
			"requestId": requestID,
			"error":     err.Error(),
		})
		return
	}

	h.logger.Info("File generation completed", map[string]interface{}{
		"requestId":    requestID,
		"outputLength": len(output),
		"durationMs":   time.Since(start).Milliseconds(),
	})
}

// Execute sends the ordered pair (prompt, attachment) to the generator.
func (h *Handler) Execute(ctx context.Context, input *Input) (string, error) {
	return h.generator.Generate(ctx, llm.Text(input.Prompt), llm.Attach(input.Attachment))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := h.errors.HandleRequestError(w, r, h.modality.Endpoint, err)
	metrics.RequestsFailed.WithLabelValues(h.modality.Endpoint, string(stdErr.Code)).Inc()
}
