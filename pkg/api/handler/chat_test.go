package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitpilot/coach-chat/pkg/domain"
)

type stubBrain struct {
	result *domain.ChatResult
	err    error
}

func (s *stubBrain) GenerateResponse(_ context.Context, _ domain.ChatRequest) (*domain.ChatResult, error) {
	return s.result, s.err
}

func postChat(t *testing.T, brain ChatBrain, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewChat(brain).GenerateResponse(rec, req)
	return rec
}

func TestChatHandler_Success(t *testing.T) {
	brain := &stubBrain{result: &domain.ChatResult{Response: "go lift", Provider: "openai", Model: "m1"}}

	rec := postChat(t, brain, "/api/chat", `{"prompt":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go lift")
}

func TestChatHandler_HTMLFormat(t *testing.T) {
	brain := &stubBrain{result: &domain.ChatResult{Response: "**go lift**", Provider: "openai", Model: "m1"}}

	rec := postChat(t, brain, "/api/chat?format=html", `{"prompt":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "strong")
}

func TestChatHandler_MalformedBody(t *testing.T) {
	rec := postChat(t, &stubBrain{}, "/api/chat", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &domain.ValidationError{Fields: []string{"prompt"}, Err: errors.New("missing")}, http.StatusBadRequest},
		{"not configured", domain.ErrNotConfigured, http.StatusServiceUnavailable},
		{"upstream", &domain.UpstreamError{Provider: "openai", Attempts: 3, Err: errors.New("boom")}, http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, &stubBrain{err: tt.err}, "/api/chat", `{"prompt":"hi"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
