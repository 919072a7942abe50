package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type NoteType string

const (
	NoteTypeNote     NoteType = "note"
	NoteTypeReminder NoteType = "reminder"
)

// Note representa uma anotação ou lembrete avulso (tabela notes_reminders)
type Note struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Type        NoteType   `json:"type"`
	Content     string     `json:"content"`
	DueDate     *time.Time `json:"due_date"`
	IsCompleted bool       `json:"is_completed"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewNote(userID, content string) (*Note, error) {
	return newNote(userID, NoteTypeNote, content, nil)
}

func NewReminder(userID, content string, due time.Time) (*Note, error) {
	return newNote(userID, NoteTypeReminder, content, &due)
}

func newNote(userID string, kind NoteType, content string, due *time.Time) (*Note, error) {
	content = strings.TrimSpace(content)
	if userID == "" {
		return nil, errors.New("user_id é obrigatório")
	}
	if content == "" {
		return nil, errors.New("content é obrigatório")
	}
	if kind == NoteTypeReminder && due == nil {
		return nil, errors.New("due_date é obrigatório para lembretes")
	}

	return &Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Content:   content,
		DueDate:   due,
		CreatedAt: time.Now(),
	}, nil
}

type NoteRepositoryInterface interface {
	Create(ctx context.Context, note *Note) error
	// FindDueReminders lista lembretes vencidos, não concluídos e ainda não notificados.
	FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*Note, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}
