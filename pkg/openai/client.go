package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/fitpilot/coach-chat/pkg/domain"
	"github.com/fitpilot/coach-chat/pkg/provider"
)

const (
	providerName = "openai"

	maxMetadataEntries  = 16
	maxMetadataKeyLen   = 64
	maxMetadataValueLen = 512
	maxUserIDLen        = 64
)

type client struct {
	cfg Config

	mu sync.Mutex
	hc *http.Client
}

// NewClient builds the adapter without touching the network. The HTTP client
// is created lazily on the first Generate call.
func NewClient(cfg Config) *client {
	return &client{cfg: cfg}
}

// Factory adapts NewClient to the registry's factory shape.
func Factory(config map[string]string) (provider.Provider, error) {
	cfg, err := ResolveConfig(config)
	if err != nil {
		return nil, fmt.Errorf("resolving openai config: %w", err)
	}
	return NewClient(cfg), nil
}

func (c *client) Name() string { return providerName }

func (c *client) Generate(ctx context.Context, in domain.ChatGenerateInput) (domain.ChatGenerateOutput, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return domain.ChatGenerateOutput{}, fmt.Errorf("openai: missing API key: %w", domain.ErrNotConfigured)
	}

	req := c.buildRequest(in)

	resp, err := c.sendChatCompletionRequest(ctx, req)
	if err != nil {
		return domain.ChatGenerateOutput{}, err
	}

	return c.extractOutput(resp)
}

func (c *client) httpClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hc == nil {
		c.hc = &http.Client{Timeout: c.cfg.Timeout}
	}
	return c.hc
}

func (c *client) buildRequest(in domain.ChatGenerateInput) *chatCompletionsRequest {
	req := &chatCompletionsRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxOutputTokens,
		User:        truncate(in.UserID, maxUserIDLen),
		Metadata:    sanitizeMetadata(in.Metadata),
	}

	if opts := in.Options; opts != nil {
		if opts.Temperature != nil {
			req.Temperature = clampFloat(*opts.Temperature, 0, 2)
		}
		if opts.MaxTokens != nil && *opts.MaxTokens > 0 {
			req.MaxTokens = *opts.MaxTokens
		}
		if opts.TopP != nil {
			topP := clampFloat(*opts.TopP, 0, 1)
			req.TopP = &topP
		}
		if len(opts.Stop) > 0 {
			req.Stop = opts.Stop
		}
	}

	system := buildSystemText(in)
	if system != "" {
		req.Messages = append(req.Messages, chatMessage{Role: domain.ChatMessageRoleSystem, Content: system})
	}
	for _, msg := range in.Messages {
		if msg.Role != domain.ChatMessageRoleUser && msg.Role != domain.ChatMessageRoleAssistant {
			continue
		}
		req.Messages = append(req.Messages, chatMessage{Role: msg.Role, Content: msg.Content, Name: msg.Name})
	}

	return req
}

// buildSystemText concatenates the top-level system text with the content of
// any system-role messages, preserving their order.
func buildSystemText(in domain.ChatGenerateInput) string {
	parts := make([]string, 0, 1+len(in.Messages))
	if strings.TrimSpace(in.System) != "" {
		parts = append(parts, strings.TrimSpace(in.System))
	}
	for _, msg := range in.Messages {
		if msg.Role == domain.ChatMessageRoleSystem && strings.TrimSpace(msg.Content) != "" {
			parts = append(parts, strings.TrimSpace(msg.Content))
		}
	}
	return strings.Join(parts, "\n\n")
}

// sanitizeMetadata bounds caller-supplied metadata: at most 16 entries in
// key order, keys capped at 64 chars, values stringified and capped at 512.
func sanitizeMetadata(metadata map[string]any) map[string]string {
	if len(metadata) == 0 {
		return nil
	}

	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > maxMetadataEntries {
		keys = keys[:maxMetadataEntries]
	}

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[truncate(key, maxMetadataKeyLen)] = truncate(stringifyValue(metadata[key]), maxMetadataValueLen)
	}
	return out
}

func stringifyValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (c *client) sendChatCompletionRequest(ctx context.Context, request *chatCompletionsRequest) (*chatCompletionsResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResponse chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResponse); err != nil {
		return nil, fmt.Errorf("decoding response data: %w", err)
	}

	return &chatResponse, nil
}

func (c *client) extractOutput(resp *chatCompletionsResponse) (domain.ChatGenerateOutput, error) {
	if len(resp.Choices) == 0 {
		return domain.ChatGenerateOutput{}, fmt.Errorf("no choices in response")
	}
	choice := resp.Choices[0]

	out := domain.ChatGenerateOutput{
		Text:         extractText(choice.Message.Content),
		Provider:     providerName,
		Model:        firstNonBlank(resp.Model, c.cfg.Model),
		FinishReason: choice.FinishReason,
	}

	if resp.Usage != nil {
		out.Usage = &domain.ChatUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	if c.cfg.IncludeRaw {
		out.Raw = resp
	}

	return out, nil
}

// extractText prefers the plain string content and falls back to scanning
// structured content blocks for text segments.
func extractText(content any) string {
	switch v := content.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		var sb strings.Builder
		for _, block := range v {
			m, ok := block.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok {
				sb.WriteString(text)
			}
		}
		return strings.TrimSpace(sb.String())
	default:
		return ""
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
