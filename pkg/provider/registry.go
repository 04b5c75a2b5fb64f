package provider

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	defaultProviderEnv = "CHAT_PROVIDER"
	fallbackProvider   = "openai"
)

// Factory builds a Provider from adapter-specific string configuration.
type Factory func(config map[string]string) (Provider, error)

// Registry is a process-wide name to factory map. Names are normalized so
// "OpenAI" and " openai " resolve to the same backend.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

type CreateParams struct {
	Name   string
	Config map[string]string
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *Registry) Register(name string, factory Factory) error {
	normalized := normalizeName(name)
	if normalized == "" {
		return fmt.Errorf("provider name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for provider %q must not be nil", normalized)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[normalized] = factory
	return nil
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create resolves a provider name (explicit, then the CHAT_PROVIDER env
// default, then "openai"), runs its factory, and asserts the result against
// the contract.
func (r *Registry) Create(params CreateParams) (Provider, error) {
	name := normalizeName(params.Name)
	if name == "" {
		name = normalizeName(os.Getenv(defaultProviderEnv))
	}
	if name == "" {
		name = fallbackProvider
	}

	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no provider registered under %q; registered providers: %s",
			name, strings.Join(r.List(), ", "))
	}

	p, err := factory(params.Config)
	if err != nil {
		return nil, fmt.Errorf("creating provider %q: %w", name, err)
	}
	if err := AssertProvider(p); err != nil {
		return nil, fmt.Errorf("provider %q failed contract check: %w", name, err)
	}
	return p, nil
}

// Clear drops every registration. It exists for test isolation only and is
// not wired into any production path.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]Factory)
}
