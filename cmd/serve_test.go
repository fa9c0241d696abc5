package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prodmap/assist/internal/model"
	"github.com/prodmap/assist/internal/pipeline"
	"github.com/prodmap/assist/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubExtractor returns canned pipeline results for handler tests.
type stubExtractor struct {
	chatResp *model.ExtractionResponse
	chatErr  error
	formData map[string]any
	formErr  error
}

func (s *stubExtractor) ExtractEntities(context.Context, pipeline.ChatRequest) (*model.ExtractionResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubExtractor) AssistForm(context.Context, pipeline.FormRequest) (map[string]any, error) {
	return s.formData, s.formErr
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandleChatExtract_Success(t *testing.T) {
	stub := &stubExtractor{
		chatResp: &model.ExtractionResponse{
			Entities: []model.EntityDraft{
				{ID: "1", EntityType: "task", Data: map[string]any{"title": "x"}, Confidence: 0.9, Action: model.ActionCreate},
			},
			Message: "One task.",
		},
	}

	rr := postJSON(t, handleChatExtract(stub), `{"message": "add a task"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var resp model.ExtractionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, "task", resp.Entities[0].EntityType)
	assert.Equal(t, "One task.", resp.Message)
}

func TestHandleChatExtract_BadRequests(t *testing.T) {
	stub := &stubExtractor{}

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing message", `{"product_id": "p1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handleChatExtract(stub), tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleChatExtract_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing credential", anthropic.ErrNoAPIKey, http.StatusInternalServerError},
		{"wrapped missing credential", eris.Wrap(anthropic.ErrNoAPIKey, "pipeline: invoke"), http.StatusInternalServerError},
		{"upstream status mirrored", &anthropic.UpstreamError{StatusCode: 429, Message: "rate limited"}, http.StatusTooManyRequests},
		{"upstream 529 mirrored", &anthropic.UpstreamError{StatusCode: 529, Message: "overloaded"}, 529},
		{"upstream nonsense status coerced", &anthropic.UpstreamError{StatusCode: 0, Message: "?"}, http.StatusBadGateway},
		{"transport", &anthropic.TransportError{Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubExtractor{chatErr: tt.err}
			rr := postJSON(t, handleChatExtract(stub), `{"message": "add a task"}`)
			assert.Equal(t, tt.want, rr.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleFormAssist_Success(t *testing.T) {
	stub := &stubExtractor{
		formData: map[string]any{"title": "Migrate billing", "status": "in_progress"},
	}

	rr := postJSON(t, handleFormAssist(stub), `{"prompt": "we started migrating billing", "form_type": "task"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Migrate billing", resp.Data["title"])
}

func TestHandleFormAssist_BadRequests(t *testing.T) {
	stub := &stubExtractor{}

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{{`},
		{"missing prompt", `{"form_type": "task"}`},
		{"missing form type", `{"prompt": "do a thing"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handleFormAssist(stub), tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleFormAssist_UnknownFormType(t *testing.T) {
	stub := &stubExtractor{
		formErr: eris.Wrapf(pipeline.ErrUnknownFormType, "form type %q", "spaceship"),
	}

	rr := postJSON(t, handleFormAssist(stub), `{"prompt": "x", "form_type": "spaceship"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "unknown form type", body["error"])
}
