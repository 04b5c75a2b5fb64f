package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFactory(name string) Factory {
	return func(_ map[string]string) (Provider, error) {
		return &fakeProvider{name: name}, nil
	}
}

func TestRegistry_NormalizesNamesOnRegisterAndCreate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("OpenAI", fakeFactory("openai")))

	spaced, err := r.Create(CreateParams{Name: " openai "})
	require.NoError(t, err)

	plain, err := r.Create(CreateParams{Name: "openai"})
	require.NoError(t, err)

	assert.Equal(t, plain.Name(), spaced.Name())
	assert.Equal(t, []string{"openai"}, r.List())
}

func TestRegistry_UnknownNameEnumeratesRegistered(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("openai", fakeFactory("openai")))

	_, err := r.Create(CreateParams{Name: "unknown-backend"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"unknown-backend"`)
	assert.Contains(t, err.Error(), "openai")
}

func TestRegistry_EnvDefaultSelection(t *testing.T) {
	t.Setenv(defaultProviderEnv, "Custom")

	r := NewRegistry()
	require.NoError(t, r.Register("custom", fakeFactory("custom")))

	p, err := r.Create(CreateParams{})
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name())
}

func TestRegistry_FallbackSelection(t *testing.T) {
	t.Setenv(defaultProviderEnv, "")

	r := NewRegistry()
	require.NoError(t, r.Register("openai", fakeFactory("openai")))

	p, err := r.Create(CreateParams{})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestRegistry_RejectsContractViolatingFactoryOutput(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("broken", func(_ map[string]string) (Provider, error) {
		return &fakeProvider{name: ""}, nil
	}))

	_, err := r.Create(CreateParams{Name: "broken"})
	require.ErrorContains(t, err, "contract check")
}

func TestRegistry_RejectsEmptyNameAndNilFactory(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register("  ", fakeFactory("x")))
	require.Error(t, r.Register("x", nil))
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("openai", fakeFactory("openai")))

	r.Clear()

	assert.Empty(t, r.List())
}
