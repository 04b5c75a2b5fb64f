package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitpilot/coach-chat/pkg/domain"
)

type fakeProvider struct {
	name     string
	out      domain.ChatGenerateOutput
	err      error
	lastIn   domain.ChatGenerateInput
	genCalls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, in domain.ChatGenerateInput) (domain.ChatGenerateOutput, error) {
	f.genCalls++
	f.lastIn = in
	return f.out, f.err
}

func validInput() domain.ChatGenerateInput {
	return domain.ChatGenerateInput{
		Messages: []domain.ChatMessage{{Role: "user", Content: "hello"}},
	}
}

func TestAssertProvider(t *testing.T) {
	require.Error(t, AssertProvider(nil))
	require.Error(t, AssertProvider(&fakeProvider{name: "  "}))
	require.NoError(t, AssertProvider(&fakeProvider{name: "fake"}))
}

func TestGenerateSafe_ReturnsValidOutput(t *testing.T) {
	p := &fakeProvider{
		name: "fake",
		out:  domain.ChatGenerateOutput{Text: "ok", Provider: "fake", Model: "m1"},
	}

	out, err := GenerateSafe(context.Background(), p, validInput())

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.Equal(t, 1, p.genCalls)
}

func TestGenerateSafe_RejectsInvalidInputBeforeCallingProvider(t *testing.T) {
	p := &fakeProvider{name: "fake"}

	_, err := GenerateSafe(context.Background(), p, domain.ChatGenerateInput{})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, p.genCalls)
}

func TestGenerateSafe_RejectsContractViolatingOutput(t *testing.T) {
	// Missing provider and model, no matter what Generate returned.
	p := &fakeProvider{
		name: "fake",
		out:  domain.ChatGenerateOutput{Text: "ok"},
	}

	_, err := GenerateSafe(context.Background(), p, validInput())

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "provider")
	assert.Contains(t, vErr.Fields, "model")
}

func TestGenerateSafe_PropagatesProviderError(t *testing.T) {
	wantErr := errors.New("upstream exploded")
	p := &fakeProvider{name: "fake", err: wantErr}

	_, err := GenerateSafe(context.Background(), p, validInput())

	require.ErrorIs(t, err, wantErr)
}
