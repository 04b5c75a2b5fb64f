package domain

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var validRoles = map[string]struct{}{
	ChatMessageRoleSystem:    {},
	ChatMessageRoleUser:      {},
	ChatMessageRoleAssistant: {},
}

type violations struct {
	fields []string
	errs   *multierror.Error
}

func (v *violations) add(field, format string, args ...any) {
	v.fields = append(v.fields, field)
	v.errs = multierror.Append(v.errs, fmt.Errorf(field+": "+format, args...))
}

func (v *violations) result() error {
	if v.errs == nil {
		return nil
	}
	return &ValidationError{Fields: v.fields, Err: v.errs.ErrorOrNil()}
}

// ValidateGenerateInput checks a provider request against the chat contract
// and returns a normalized copy. Every violated field is reported, not just
// the first.
func ValidateGenerateInput(in ChatGenerateInput) (ChatGenerateInput, error) {
	v := &violations{}

	out := in
	if len(in.Messages) == 0 {
		v.add("messages", "must contain at least one message")
	} else {
		out.Messages = make([]ChatMessage, len(in.Messages))
		for i, msg := range in.Messages {
			out.Messages[i] = validateMessage(v, fmt.Sprintf("messages[%d]", i), msg)
		}
	}

	validateOptions(v, in.Options)

	if err := v.result(); err != nil {
		return ChatGenerateInput{}, err
	}
	return out, nil
}

func validateMessage(v *violations, field string, msg ChatMessage) ChatMessage {
	out := msg
	out.Role = strings.ToLower(strings.TrimSpace(msg.Role))

	if _, ok := validRoles[out.Role]; !ok {
		v.add(field+".role", "must be one of system, user, assistant; got %q", msg.Role)
	}
	if strings.TrimSpace(msg.Content) == "" {
		v.add(field+".content", "must not be empty")
	}
	if msg.Name != "" && strings.TrimSpace(msg.Name) == "" {
		v.add(field+".name", "must not be blank when present")
	}
	return out
}

func validateOptions(v *violations, opts *ChatOptions) {
	if opts == nil {
		return
	}
	if opts.Temperature != nil && (*opts.Temperature < 0 || *opts.Temperature > 2) {
		v.add("options.temperature", "must be between 0 and 2; got %v", *opts.Temperature)
	}
	if opts.MaxTokens != nil && *opts.MaxTokens <= 0 {
		v.add("options.maxTokens", "must be a positive integer; got %d", *opts.MaxTokens)
	}
	if opts.TopP != nil && (*opts.TopP < 0 || *opts.TopP > 1) {
		v.add("options.topP", "must be between 0 and 1; got %v", *opts.TopP)
	}
	for i, s := range opts.Stop {
		if strings.TrimSpace(s) == "" {
			v.add(fmt.Sprintf("options.stop[%d]", i), "must not be empty")
		}
	}
}

// ValidateGenerateOutput checks a provider response against the chat
// contract.
func ValidateGenerateOutput(out ChatGenerateOutput) (ChatGenerateOutput, error) {
	v := &violations{}

	if strings.TrimSpace(out.Provider) == "" {
		v.add("provider", "must not be empty")
	}
	if strings.TrimSpace(out.Model) == "" {
		v.add("model", "must not be empty")
	}
	if out.Usage != nil {
		if out.Usage.InputTokens < 0 {
			v.add("usage.inputTokens", "must not be negative; got %d", out.Usage.InputTokens)
		}
		if out.Usage.OutputTokens < 0 {
			v.add("usage.outputTokens", "must not be negative; got %d", out.Usage.OutputTokens)
		}
		if out.Usage.TotalTokens < 0 {
			v.add("usage.totalTokens", "must not be negative; got %d", out.Usage.TotalTokens)
		}
	}

	if err := v.result(); err != nil {
		return ChatGenerateOutput{}, err
	}
	return out, nil
}

// ValidateChatRequest checks the broader orchestrator-level request. It
// accepts either a raw prompt or a full message list.
func ValidateChatRequest(req ChatRequest) (ChatRequest, error) {
	v := &violations{}

	out := req
	if strings.TrimSpace(req.Prompt) == "" && len(req.Messages) == 0 {
		v.add("prompt", "either prompt or messages must be provided")
	}
	if len(req.Messages) > 0 {
		out.Messages = make([]ChatMessage, len(req.Messages))
		for i, msg := range req.Messages {
			out.Messages[i] = validateMessage(v, fmt.Sprintf("messages[%d]", i), msg)
		}
	}
	if req.MemoryLimit != nil && *req.MemoryLimit < 0 {
		v.add("memoryLimit", "must not be negative; got %d", *req.MemoryLimit)
	}
	validateOptions(v, req.Options)

	if err := v.result(); err != nil {
		return ChatRequest{}, err
	}
	return out, nil
}
