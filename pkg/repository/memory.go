package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fitpilot/coach-chat/pkg/domain"
)

type memoryRepository struct {
	db *sql.DB
}

func NewMemoryRepository(db *sql.DB) *memoryRepository {
	return &memoryRepository{db: db}
}

func (m *memoryRepository) Insert(ctx context.Context, record domain.ChatMemoryRecord) (domain.ChatMemoryRecord, error) {
	const query = `
		INSERT INTO chat_memories (owner_id, user_summary, assistant_summary, context_label, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := m.db.QueryRowContext(ctx, query,
		record.OwnerID,
		record.UserSummary,
		record.AssistantSummary,
		record.ContextLabel,
		record.CreatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return domain.ChatMemoryRecord{}, fmt.Errorf("saving chat memory: %w", err)
	}

	return record, nil
}

// FindRecent returns up to limit records for the owner, newest first.
func (m *memoryRepository) FindRecent(ctx context.Context, ownerID string, limit int) ([]domain.ChatMemoryRecord, error) {
	const query = `
		SELECT owner_id, user_summary, assistant_summary, context_label, created_at
		FROM chat_memories
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := m.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching chat memories: %w", err)
	}
	defer rows.Close()

	var records []domain.ChatMemoryRecord
	for rows.Next() {
		var record domain.ChatMemoryRecord
		if err := rows.Scan(
			&record.OwnerID,
			&record.UserSummary,
			&record.AssistantSummary,
			&record.ContextLabel,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning chat memory row: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat memory rows: %w", err)
	}

	return records, nil
}
