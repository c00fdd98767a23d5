// Package llm wraps the Gemini SDK behind a small Generator interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"gemini-gateway/internal/common/attachment"
	apperrors "gemini-gateway/internal/common/errors"
	"gemini-gateway/internal/common/metrics"
)

// Generator is the generation service consumed by the HTTP handlers.
type Generator interface {
	Generate(ctx context.Context, parts ...Part) (string, error)
}

// Part is one element of the ordered model input: text or an attachment.
type Part struct {
	Text       string
	Attachment *attachment.Attachment
}

func Text(s string) Part { return Part{Text: s} }

func Attach(a *attachment.Attachment) Part { return Part{Attachment: a} }

// IsAttachment reports whether the part carries encoded content.
func (p Part) IsAttachment() bool { return p.Attachment != nil }

const tracerName = "gemini-gateway/llm"

// contentGenerator is the subset of *genai.GenerativeModel we call.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration // zero disables
}

// GeminiClient implements Generator against the Gemini API. It is safe for
// concurrent use.
type GeminiClient struct {
	client *genai.Client
	model  contentGenerator
	name   string
	config Config
}

func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: missing api key")
	}
	if cfg.Model == "" {
		return nil, errors.New("gemini: missing model name")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		name:   cfg.Model,
		config: cfg,
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, parts ...Part) (string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "gemini.GenerateContent",
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("gen_ai.request.model", g.name),
			attribute.Int("gen_ai.request.parts", len(parts)),
		),
	)
	defer span.End()

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	input, err := toGenaiParts(parts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid attachment")
		return "", apperrors.NewGenerationFailedError(err)
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, input...)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.GenerationDuration.WithLabelValues(g.name, status).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", apperrors.NewGenerationFailedError(err)
	}

	text, err := extractText(resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no text in response")
		return "", err
	}
	span.SetAttributes(attribute.Int("gen_ai.response.length", len(text)))
	return text, nil
}

func (g *GeminiClient) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func toGenaiParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for i, p := range parts {
		if !p.IsAttachment() {
			out = append(out, genai.Text(p.Text))
			continue
		}
		data, err := p.Attachment.Bytes()
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		out = append(out, genai.Blob{MIMEType: p.Attachment.MediaType, Data: data})
	}
	return out, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", apperrors.NewEmptyResponseError("gemini: nil response")
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", apperrors.NewEmptyResponseError(
				fmt.Sprintf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason))
		}
		return "", apperrors.NewEmptyResponseError("gemini: empty response")
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", apperrors.NewEmptyResponseError(
			fmt.Sprintf("gemini: candidate has no content (finish reason %s)", cand.FinishReason))
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
