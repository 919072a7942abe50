package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type NoteRepo struct {
	db *sql.DB
}

func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

func (r *NoteRepo) Create(ctx context.Context, note *entity.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes_reminders(id, user_id, type, content, due_date, is_completed, created_at)
		 VALUES(?,?,?,?,?,?,?)`,
		note.ID, note.UserID, string(note.Type), note.Content, nullTime(note.DueDate), note.IsCompleted, utc(note.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir anotação: %w", err)
	}
	return nil
}

func (r *NoteRepo) FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*entity.Note, error) {
	return r.list(ctx,
		`WHERE type = 'reminder' AND is_completed = 0 AND notified_at IS NULL AND due_date <= ?
		 ORDER BY due_date ASC LIMIT ?`,
		utc(now), limit,
	)
}

// ListByUser devolve as anotações do usuário na ordem de criação.
func (r *NoteRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Note, error) {
	return r.list(ctx, `WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
}

func (r *NoteRepo) MarkNotified(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes_reminders SET notified_at = ? WHERE id = ? AND notified_at IS NULL`,
		utc(at), id,
	)
	if err != nil {
		return fmt.Errorf("erro ao marcar lembrete como notificado: %w", err)
	}
	return expectOne(res, fmt.Errorf("lembrete %s não encontrado ou já notificado", id))
}

func (r *NoteRepo) list(ctx context.Context, where string, args ...any) ([]*entity.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, type, content, due_date, is_completed, notified_at, created_at
		 FROM notes_reminders `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar anotações: %w", err)
	}
	defer rows.Close()

	var notes []*entity.Note
	for rows.Next() {
		var (
			n             entity.Note
			kind          string
			due, notified sql.NullTime
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
