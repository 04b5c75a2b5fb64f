package domain

// ChatRequest is what callers of the chat brain submit. Either Prompt or
// Messages must be present; everything else is optional.
type ChatRequest struct {
	Prompt      string         `json:"prompt,omitempty"`
	Messages    []ChatMessage  `json:"messages,omitempty"`
	PersonaID   string         `json:"personaId,omitempty"`
	Context     any            `json:"context,omitempty"`
	System      string         `json:"system,omitempty"`
	UserID      string         `json:"userId,omitempty"`
	MemoryLimit *int           `json:"memoryLimit,omitempty"`
	SkipMemory  bool           `json:"skipMemory,omitempty"`
	Options     *ChatOptions   `json:"options,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ChatResult struct {
	Response     string     `json:"response"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	FinishReason string     `json:"finishReason,omitempty"`
	Usage        *ChatUsage `json:"usage,omitempty"`
	Meta         ChatMeta   `json:"meta"`
}

type ChatMeta struct {
	Persona      string `json:"persona"`
	Context      string `json:"context"`
	MemoryUsed   int    `json:"memoryUsed"`
	MessageCount int    `json:"messageCount"`
}
