package domain

import "time"

// ChatMemoryRecord is a summarized snapshot of one past exchange, owned by
// the external store. Records are insert-only; retention is the store's
// concern.
type ChatMemoryRecord struct {
	OwnerID          string
	UserSummary      string
	AssistantSummary string
	ContextLabel     string
	CreatedAt        time.Time
}
