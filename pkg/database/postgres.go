package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewPostgres opens a connection using the full URL when present, falling
// back to a local host address, and applies pending migrations.
func NewPostgres(url, host string) (*sql.DB, error) {
	var connector *pgdriver.Connector
	if url != "" {
		connector = pgdriver.NewConnector(pgdriver.WithDSN(url))
	} else {
		connector = pgdriver.NewConnector(
			pgdriver.WithAddr(host),
			pgdriver.WithUser("postgres"),
			pgdriver.WithPassword("postgres"),
			pgdriver.WithDatabase("coach_chat"),
			pgdriver.WithInsecure(true),
		)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging db: %w", err)
	}

	applied, err := migrate.Exec(db, "postgres", migrations, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}
	slog.Info("Database migrations applied", "count", applied)

	return db, nil
}

var migrations = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "001_create_chat_memories",
			Up: []string{`
				CREATE TABLE IF NOT EXISTS chat_memories (
					id BIGSERIAL PRIMARY KEY,
					owner_id TEXT NOT NULL,
					user_summary TEXT NOT NULL DEFAULT '',
					assistant_summary TEXT NOT NULL DEFAULT '',
					context_label TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT now()
				)`,
				`CREATE INDEX IF NOT EXISTS idx_chat_memories_owner_created
					ON chat_memories (owner_id, created_at DESC)`,
			},
			Down: []string{`DROP TABLE chat_memories`},
		},
	},
}
