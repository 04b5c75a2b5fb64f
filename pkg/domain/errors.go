package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNotConfigured = errors.New("provider is not configured")
)

// ValidationError reports every violated field of a payload, not just the
// first one.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for [%s]: %v", strings.Join(e.Fields, ", "), e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// UpstreamError wraps a provider failure that survived the retry loop.
type UpstreamError struct {
	Provider  string
	Attempts  int
	Transient bool
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %q failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
