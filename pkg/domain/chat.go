package domain

const (
	ChatMessageRoleSystem    = "system"
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type ChatGenerateInput struct {
	System   string         `json:"system,omitempty"`
	Messages []ChatMessage  `json:"messages"`
	Context  any            `json:"context,omitempty"`
	UserID   string         `json:"userId,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Options  *ChatOptions   `json:"options,omitempty"`
}

type ChatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ChatGenerateOutput struct {
	Text         string     `json:"text"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	FinishReason string     `json:"finishReason,omitempty"`
	Usage        *ChatUsage `json:"usage,omitempty"`
	Raw          any        `json:"raw,omitempty"`
}

type ChatUsage struct {
	InputTokens  int `json:"inputTokens,omitempty"`
	OutputTokens int `json:"outputTokens,omitempty"`
	TotalTokens  int `json:"totalTokens,omitempty"`
}
