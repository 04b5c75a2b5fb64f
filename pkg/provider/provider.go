package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fitpilot/coach-chat/pkg/domain"
)

// Provider turns a validated chat request into generated text. Implementations
// must be safe for concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, in domain.ChatGenerateInput) (domain.ChatGenerateOutput, error)
}

// AssertProvider rejects implementations that cannot possibly satisfy the
// contract. It runs at registration time so misbuilt backends never reach a
// caller.
func AssertProvider(p Provider) error {
	if p == nil {
		return errors.New("provider must not be nil")
	}
	if strings.TrimSpace(p.Name()) == "" {
		return errors.New("provider must report a non-empty name")
	}
	return nil
}

// GenerateSafe validates the input, invokes the provider, and validates the
// result. Every call path into a backend goes through here; nothing may
// bypass the contract checks.
func GenerateSafe(ctx context.Context, p Provider, in domain.ChatGenerateInput) (domain.ChatGenerateOutput, error) {
	if err := AssertProvider(p); err != nil {
		return domain.ChatGenerateOutput{}, err
	}

	validated, err := domain.ValidateGenerateInput(in)
	if err != nil {
		return domain.ChatGenerateOutput{}, fmt.Errorf("validating generate input: %w", err)
	}

	out, err := p.Generate(ctx, validated)
	if err != nil {
		return domain.ChatGenerateOutput{}, err
	}

	checked, err := domain.ValidateGenerateOutput(out)
	if err != nil {
		return domain.ChatGenerateOutput{}, fmt.Errorf("validating %q provider output: %w", p.Name(), err)
	}
	return checked, nil
}
