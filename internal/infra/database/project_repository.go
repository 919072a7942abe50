package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ProjectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

// UpsertContent: atualiza por nome exato; sem linha, insere.
func (r *ProjectRepository) UpsertContent(ctx context.Context, userID, name string, content json.RawMessage) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`UPDATE projects SET content = $3, updated_at = NOW()
		 WHERE id = (SELECT id FROM projects WHERE user_id = $1 AND name = $2 ORDER BY created_at DESC LIMIT 1)
		 RETURNING id`,
		userID, name, []byte(content),
	).Scan(&id)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO projects (id, user_id, name, content, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())`,
			uuid.New().String(), userID, name, []byte(content),
		)
		if err != nil {
			return false, fmt.Errorf("erro ao criar projeto: %w", translateError(err))
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("erro ao atualizar projeto: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}
