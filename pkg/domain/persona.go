package domain

// Persona is a static bundle of coaching tone directives. The table of
// personas is loaded once and never mutated at runtime.
type Persona struct {
	Key        string
	Style      string
	Directives []string
}
