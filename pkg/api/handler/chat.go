package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fitpilot/coach-chat/pkg/api/response"
	"github.com/fitpilot/coach-chat/pkg/domain"
)

type ChatBrain interface {
	GenerateResponse(ctx context.Context, req domain.ChatRequest) (*domain.ChatResult, error)
}

type chat struct {
	brain  ChatBrain
	writer response.JSONResponseWriter
}

func NewChat(brain ChatBrain) *chat {
	return &chat{brain: brain}
}

func (c *chat) GenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := c.brain.GenerateResponse(r.Context(), req)
	if err != nil {
		c.writer.WriteErrorResponse(w, statusFor(err), err.Error())
		return
	}

	if r.URL.Query().Get("format") == "html" {
		result.Response = response.RenderMarkdown(result.Response)
	}

	c.writer.WriteSuccessResponse(w, result)
}

func statusFor(err error) int {
	var validationErr *domain.ValidationError
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
