package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema é o DDL mínimo das tabelas usadas pelo concierge. Em produção as
// tabelas já existem; o comando migrate serve para ambientes novos.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id         TEXT PRIMARY KEY,
		full_name  TEXT,
		email      TEXT,
		phone      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS leads (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL,
		name              TEXT NOT NULL,
		email             TEXT,
		phone             TEXT,
		status            TEXT NOT NULL DEFAULT 'novo',
		ai_classification TEXT CHECK (ai_classification IN ('hot', 'cold')),
		notes             TEXT,
		reminder_date     TIMESTAMPTZ,
		source            TEXT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_user_created ON leads (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notes_reminders (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		type         TEXT NOT NULL CHECK (type IN ('note', 'reminder')),
		content      TEXT NOT NULL,
		due_date     TIMESTAMPTZ,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		notified_at  TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_due ON notes_reminders (due_date)
		WHERE type = 'reminder' AND is_completed = FALSE AND notified_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS social_posts (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		platform         TEXT NOT NULL,
		caption          TEXT,
		media_url        TEXT,
		status           TEXT NOT NULL DEFAULT 'draft'
		                 CHECK (status IN ('draft', 'scheduling', 'scheduled', 'published', 'failed')),
		scheduled_at     TIMESTAMPTZ,
		published_at     TIMESTAMPTZ,
		platform_post_id TEXT,
		error_message    TEXT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_user_status ON social_posts (user_id, status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		content    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migração %d falhou: %w", i+1, err)
		}
	}
	return nil
}
