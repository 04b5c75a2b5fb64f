package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/fitpilot/coach-chat/pkg/domain"
	"github.com/fitpilot/coach-chat/pkg/logger"
	"github.com/fitpilot/coach-chat/pkg/persona"
	"github.com/fitpilot/coach-chat/pkg/provider"
)

type MemoryRepository interface {
	FindRecent(ctx context.Context, ownerID string, limit int) ([]domain.ChatMemoryRecord, error)
	Insert(ctx context.Context, record domain.ChatMemoryRecord) (domain.ChatMemoryRecord, error)
}

type ProviderSource interface {
	Create(params provider.CreateParams) (provider.Provider, error)
}

const (
	maxContextLabelChars = 80
	maxMemoryFieldChars  = 240

	safetyDirective = "If the user mentions pain or an injury, recommend reducing intensity and consulting a medical professional before continuing."
)

// contextLabelFields is the preference order when the caller's context
// arrives as an object instead of a plain string.
var contextLabelFields = []string{"label", "goal", "activity", "workout", "page"}

type ChatBrainConfig struct {
	ProviderName    string
	ProviderConfig  map[string]string
	MaxAttempts     int
	BackoffBase     time.Duration
	MaxMessages     int
	MinMessages     int
	TokenBudget     int
	MaxMessageChars int
	MaxSystemChars  int
	MemoryLimit     int
}

func (c ChatBrainConfig) withDefaults() ChatBrainConfig {
	c.MaxAttempts = lo.Ternary(c.MaxAttempts > 0, c.MaxAttempts, 3)
	c.BackoffBase = lo.Ternary(c.BackoffBase > 0, c.BackoffBase, 250*time.Millisecond)
	c.MaxMessages = lo.Ternary(c.MaxMessages > 0, c.MaxMessages, 20)
	c.MinMessages = lo.Ternary(c.MinMessages > 0, c.MinMessages, 2)
	c.TokenBudget = lo.Ternary(c.TokenBudget > 0, c.TokenBudget, 3000)
	c.MaxMessageChars = lo.Ternary(c.MaxMessageChars > 0, c.MaxMessageChars, 4000)
	c.MaxSystemChars = lo.Ternary(c.MaxSystemChars > 0, c.MaxSystemChars, 6000)
	c.MemoryLimit = lo.Ternary(c.MemoryLimit > 0, c.MemoryLimit, 5)
	return c
}

type chatBrain struct {
	cfg           ChatBrainConfig
	providers     ProviderSource
	memoryRepo    MemoryRepository
	onMemoryError func(error)

	mu   sync.Mutex
	prov provider.Provider

	sleep func(time.Duration)
}

// NewChatBrain wires the orchestrator. onMemoryError may be nil; memory
// write failures then go to the log.
func NewChatBrain(
	cfg ChatBrainConfig,
	providers ProviderSource,
	memoryRepo MemoryRepository,
	onMemoryError func(error),
) *chatBrain {
	return &chatBrain{
		cfg:           cfg.withDefaults(),
		providers:     providers,
		memoryRepo:    memoryRepo,
		onMemoryError: onMemoryError,
		sleep:         time.Sleep,
	}
}

// GenerateResponse runs one chat turn: validate, normalize and prune the
// conversation, compose the system prompt from persona, context and memory,
// call the provider with bounded retries, then record the exchange.
func (c *chatBrain) GenerateResponse(ctx context.Context, raw domain.ChatRequest) (*domain.ChatResult, error) {
	req, err := domain.ValidateChatRequest(raw)
	if err != nil {
		return nil, err
	}

	messages := c.normalizeMessages(req)
	messages = c.pruneMessages(messages)

	p := persona.Resolve(req.PersonaID)
	label := c.contextLabel(req.Context)

	records, err := c.fetchMemories(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching memory records: %w", err)
	}

	system := c.composeSystemPrompt(p, label, req.System, formatMemoryBlock(records))

	slog.InfoContext(ctx, "Generating coach response",
		"persona", p.Key,
		"context", label,
		"messageCount", len(messages),
		"memoryUsed", len(records),
	)

	out, err := c.invokeProvider(ctx, req, system, messages, label, p.Key, len(records))
	if err != nil {
		return nil, err
	}

	if !req.SkipMemory && req.UserID != "" {
		c.persistMemory(ctx, req.UserID, messages, out.Text, label)
	}

	return &domain.ChatResult{
		Response:     out.Text,
		Provider:     out.Provider,
		Model:        out.Model,
		FinishReason: out.FinishReason,
		Usage:        out.Usage,
		Meta: domain.ChatMeta{
			Persona:      p.Key,
			Context:      label,
			MemoryUsed:   len(records),
			MessageCount: len(messages),
		},
	}, nil
}

func (c *chatBrain) normalizeMessages(req domain.ChatRequest) []domain.ChatMessage {
	if len(req.Messages) > 0 {
		out := make([]domain.ChatMessage, len(req.Messages))
		for i, msg := range req.Messages {
			msg.Content = truncate(msg.Content, c.cfg.MaxMessageChars)
			out[i] = msg
		}
		return out
	}

	return []domain.ChatMessage{{
		Role:    domain.ChatMessageRoleUser,
		Content: truncate(strings.TrimSpace(req.Prompt), c.cfg.MaxMessageChars),
	}}
}

// pruneMessages keeps the most recent MaxMessages, then drops the oldest
// remaining message while the estimated token cost exceeds the budget and
// more than MinMessages remain. A minimal set that still exceeds the budget
// is accepted unchanged.
func (c *chatBrain) pruneMessages(messages []domain.ChatMessage) []domain.ChatMessage {
	if len(messages) > c.cfg.MaxMessages {
		messages = messages[len(messages)-c.cfg.MaxMessages:]
	}
	for len(messages) > c.cfg.MinMessages && estimateTokens(messages) > c.cfg.TokenBudget {
		messages = messages[1:]
	}
	return messages
}

// estimateTokens approximates token cost as content length over four,
// rounded up, summed across messages.
func estimateTokens(messages []domain.ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += (len(msg.Content) + 3) / 4
	}
	return total
}

func (c *chatBrain) contextLabel(rawCtx any) string {
	switch v := rawCtx.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return truncate(trimmed, maxContextLabelChars)
		}
	case map[string]any:
		for _, field := range contextLabelFields {
			if s, ok := v[field].(string); ok && strings.TrimSpace(s) != "" {
				return truncate(strings.TrimSpace(s), maxContextLabelChars)
			}
		}
	}
	return "general coaching"
}

func (c *chatBrain) fetchMemories(ctx context.Context, req domain.ChatRequest) ([]domain.ChatMemoryRecord, error) {
	limit := lo.FromPtrOr(req.MemoryLimit, c.cfg.MemoryLimit)
	if req.UserID == "" || limit <= 0 {
		return nil, nil
	}
	return c.memoryRepo.FindRecent(ctx, req.UserID, limit)
}

func formatMemoryBlock(records []domain.ChatMemoryRecord) string {
	if len(records) == 0 {
		return ""
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = fmt.Sprintf("%d. User: %s | Coach: %s",
			i+1,
			truncate(r.UserSummary, maxMemoryFieldChars),
			truncate(r.AssistantSummary, maxMemoryFieldChars),
		)
	}
	return strings.Join(lines, "\n")
}

func (c *chatBrain) composeSystemPrompt(p domain.Persona, label, extra, memoryBlock string) string {
	parts := make([]string, 0, len(p.Directives)+5)
	parts = append(parts, p.Style)
	parts = append(parts, p.Directives...)
	parts = append(parts, "Current context: "+label)
	parts = append(parts, safetyDirective)
	if trimmed := strings.TrimSpace(extra); trimmed != "" {
		parts = append(parts, trimmed)
	}
	if memoryBlock != "" {
		parts = append(parts, "Recent conversation summaries:\n"+memoryBlock)
	}
	return truncate(strings.Join(parts, "\n"), c.cfg.MaxSystemChars)
}

func (c *chatBrain) invokeProvider(
	ctx context.Context,
	req domain.ChatRequest,
	system string,
	messages []domain.ChatMessage,
	label, personaKey string,
	memoryCount int,
) (domain.ChatGenerateOutput, error) {
	prov, err := c.provider()
	if err != nil {
		return domain.ChatGenerateOutput{}, err
	}

	metadata := make(map[string]any, len(req.Metadata)+3)
	for k, v := range req.Metadata {
		metadata[k] = v
	}
	metadata["context_label"] = label
	metadata["persona"] = personaKey
	metadata["memory_count"] = memoryCount

	payload := domain.ChatGenerateInput{
		System:   system,
		Messages: messages,
		Context:  req.Context,
		UserID:   req.UserID,
		Metadata: metadata,
		Options:  req.Options,
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		out, err := provider.GenerateSafe(ctx, prov, payload)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return domain.ChatGenerateOutput{}, err
		}
		if errors.Is(err, domain.ErrNotConfigured) {
			return domain.ChatGenerateOutput{}, fmt.Errorf("provider %q: %w", prov.Name(), err)
		}

		transient := isTransientError(err)
		if !transient || attempt == c.cfg.MaxAttempts {
			return domain.ChatGenerateOutput{}, &domain.UpstreamError{
				Provider:  prov.Name(),
				Attempts:  attempt,
				Transient: transient,
				Err:       err,
			}
		}

		slog.WarnContext(ctx, "Transient provider failure, retrying",
			"provider", prov.Name(),
			"attempt", attempt,
			logger.Err(err),
		)
		c.sleep(c.cfg.BackoffBase * time.Duration(attempt))
		payload.Metadata["retry_attempt"] = attempt
	}

	return domain.ChatGenerateOutput{}, lastErr
}

func (c *chatBrain) provider() (provider.Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.prov != nil {
		return c.prov, nil
	}

	p, err := c.providers.Create(provider.CreateParams{
		Name:   c.cfg.ProviderName,
		Config: c.cfg.ProviderConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("resolving chat provider: %w", err)
	}
	c.prov = p
	return p, nil
}

// persistMemory is best effort. A failed write is reported through the hook
// or logged; it never fails the chat turn.
func (c *chatBrain) persistMemory(ctx context.Context, userID string, messages []domain.ChatMessage, reply, label string) {
	record := domain.ChatMemoryRecord{
		OwnerID:          userID,
		UserSummary:      truncate(lastUserContent(messages), maxMemoryFieldChars),
		AssistantSummary: truncate(reply, maxMemoryFieldChars),
		ContextLabel:     label,
		CreatedAt:        time.Now(),
	}

	if _, err := c.memoryRepo.Insert(ctx, record); err != nil {
		if c.onMemoryError != nil {
			c.onMemoryError(err)
			return
		}
		slog.ErrorContext(ctx, "Saving chat memory failed", "userID", userID, logger.Err(err))
	}
}

func lastUserContent(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.ChatMessageRoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
