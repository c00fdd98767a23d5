package generatetext

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "gemini-gateway/internal/common/errors"
	"gemini-gateway/internal/common/llm"
	"gemini-gateway/internal/common/logger"
)

// ==========================
// Mock Generator Implementation
// ==========================

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, parts ...llm.Part) (string, error) {
	args := m.Called(ctx, parts)
	return args.String(0), args.Error(1)
}

func newTestHandler(t *testing.T, gen llm.Generator) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		Generator: gen,
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

func jsonRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/generate-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ==========================
// Success Tests
// ==========================

func TestHandler_GeneratesText(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, []llm.Part{llm.Text("Say hi")}).Return("hi there", nil).Once()

	rec := httptest.NewRecorder()
	newTestHandler(t, gen).ServeHTTP(rec, jsonRequest(`{"prompt":"Say hi"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, map[string]string{"output": "hi there"}, decodeBody(t, rec))
	gen.AssertExpectations(t)
}

func TestHandler_AcceptsFormEncodedPrompt(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, []llm.Part{llm.Text("Write a haiku")}).Return("five seven five", nil).Once()

	form := url.Values{"prompt": {"Write a haiku"}}
	req := httptest.NewRequest(http.MethodPost, "/generate-text", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	newTestHandler(t, gen).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "five seven five", decodeBody(t, rec)["output"])
	gen.AssertExpectations(t)
}

func TestHandler_IgnoresExtraFields(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, []llm.Part{llm.Text("x")}).Return("y", nil).Once()

	rec := httptest.NewRecorder()
	newTestHandler(t, gen).ServeHTTP(rec, jsonRequest(`{"prompt":"x","temperature":0.5}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	gen.AssertExpectations(t)
}

// ==========================
// Rejection Tests
// ==========================

func TestHandler_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
		wantError   string
	}{
		{
			name:        "missing prompt",
			body:        `{}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "empty prompt",
			body:        `{"prompt":""}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "null prompt",
			body:        `{"prompt":null}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "false prompt",
			body:        `{"prompt":false}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "zero prompt",
			body:        `{"prompt":0}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "true prompt",
			body:        `{"prompt":true}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptTypeMessage,
		},
		{
			name:        "object prompt",
			body:        `{"prompt":{"text":"hi"}}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptTypeMessage,
		},
		{
			name:        "numeric prompt",
			body:        `{"prompt":42}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptTypeMessage,
		},
		{
			name:        "empty body",
			body:        ``,
			contentType: "",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "array body",
			body:        `["Say hi"]`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "unsupported content type",
			body:        `prompt=hi`,
			contentType: "text/plain",
			wantStatus:  http.StatusBadRequest,
			wantError:   PromptRequiredMessage,
		},
		{
			name:        "malformed json",
			body:        `{"prompt":`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{}
			req := httptest.NewRequest(http.MethodPost, "/generate-text", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := httptest.NewRecorder()
			newTestHandler(t, gen).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, map[string]string{"error": tt.wantError}, decodeBody(t, rec))
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_BodyTooLarge(t *testing.T) {
	gen := &MockGenerator{}
	h, err := NewHandler(HandlerOptions{
		Config:    &Config{MaxBodyBytes: 16},
		Generator: gen,
		Logger:    logger.NewTestLogger(t),
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest(`{"prompt":"`+strings.Repeat("a", 64)+`"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// ==========================
// Failure Tests
// ==========================

func TestHandler_GeneratorFailure(t *testing.T) {
	gen := &MockGenerator{}
	cause := stderrors.New("API key not valid")
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("", apperrors.NewGenerationFailedError(cause)).Once()

	rec := httptest.NewRecorder()
	newTestHandler(t, gen).ServeHTTP(rec, jsonRequest(`{"prompt":"Say hi"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]string{"error": "API key not valid"}, decodeBody(t, rec))
	gen.AssertExpectations(t)
}

func TestHandler_UntypedGeneratorFailure(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return("", stderrors.New("connection reset")).Once()

	rec := httptest.NewRecorder()
	newTestHandler(t, gen).ServeHTTP(rec, jsonRequest(`{"prompt":"Say hi"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "connection reset", decodeBody(t, rec)["error"])
}

// ==========================
// Construction Tests
// ==========================

func TestNewHandler_Validation(t *testing.T) {
	_, err := NewHandler(HandlerOptions{})
	assert.ErrorContains(t, err, "generator is required")

	_, err = NewHandler(HandlerOptions{Generator: &MockGenerator{}, Config: &Config{}})
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestHandler_Execute(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("Generate", mock.Anything, []llm.Part{llm.Text("ping")}).Return("pong", nil).Once()

	out, err := newTestHandler(t, gen).Execute(context.Background(), &Input{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
}
