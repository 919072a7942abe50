package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *entity.Note) error {
	query := `
		INSERT INTO notes_reminders (id, user_id, type, content, due_date, is_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var due sql.NullTime
	if note.DueDate != nil {
		due = sql.NullTime{Time: *note.DueDate, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		note.ID, note.UserID, string(note.Type), note.Content, due, note.IsCompleted, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir anotação: %w", translateError(err))
	}
	return nil
}

func (r *NoteRepository) FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*entity.Note, error) {
	query := `
		SELECT id, user_id, type, content, due_date, is_completed, notified_at, created_at
		FROM notes_reminders
		WHERE type = 'reminder'
		  AND is_completed = FALSE
		  AND notified_at IS NULL
		  AND due_date <= $1
		ORDER BY due_date ASC
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lembretes vencidos: %w", err)
	}
	defer rows.Close()

	var notes []*entity.Note
	for rows.Next() {
		var (
			n        entity.Note
			kind     string
			due      sql.NullTime
			notified sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &kind, &n.Content, &due, &n.IsCompleted, &notified, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = entity.NoteType(kind)
		n.DueDate = ptrTime(due)
		n.NotifiedAt = ptrTime(notified)
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

func (r *NoteRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notes_reminders SET notified_at = $2 WHERE id = $1 AND notified_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("erro ao marcar lembrete como notificado: %w", err)
	}
	return expectOne(res, fmt.Errorf("lembrete %s não encontrado ou já notificado", id))
}
