package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) UpsertContent(ctx context.Context, userID, name string, content json.RawMessage) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := utc(time.Now())
	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM projects WHERE user_id = ? AND name = ? ORDER BY created_at DESC LIMIT 1`,
		userID, name,
	).Scan(&id)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects(id, user_id, name, content, created_at, updated_at) VALUES(?,?,?,?,?,?)`,
			uuid.New().String(), userID, name, string(content), now, now,
		)
		created = true
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE projects SET content = ?, updated_at = ? WHERE id = ?`,
			string(content), now, id,
		)
	}
	if err != nil {
		return false, fmt.Errorf("erro ao salvar projeto: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}

// Content devolve o conteúdo salvo do projeto (CLI e testes).
func (r *ProjectRepo) Content(ctx context.Context, userID, name string) (json.RawMessage, error) {
	var content sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT content FROM projects WHERE user_id = ? AND name = ? ORDER BY created_at DESC LIMIT 1`,
		userID, name,
	).Scan(&content)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(content.String), nil
}
