package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	LeadStatusNew = "novo"

	ClassificationHot  = "hot"
	ClassificationCold = "cold"

	// Layout do carimbo usado em cada linha anexada ao campo notes
	NoteStampLayout = "02/01/2006 15:04"
)

type Lead struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	Name             string     `json:"name"`
	Email            *string    `json:"email"`
	Phone            *string    `json:"phone"`
	Status           string     `json:"status"`
	AIClassification *string    `json:"ai_classification"`
	Notes            string     `json:"notes"`
	ReminderDate     *time.Time `json:"reminder_date"`
	Source           string     `json:"source"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewLead monta um lead novo (status "novo"). Email e telefone vazios viram NULL.
func NewLead(userID, name, email, phone, notes string) (*Lead, error) {
	now := time.Now()
	lead := &Lead{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Email:     optionalString(email),
		Phone:     optionalString(phone),
		Status:    LeadStatusNew,
		Notes:     strings.TrimSpace(notes),
		Source:    "concierge",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.UserID == "" {
		return errors.New("user_id é obrigatório")
	}
	if l.Name == "" {
		return errors.New("name é obrigatório")
	}
	return nil
}

// NoteLine formata uma linha de anotação com carimbo de data/hora.
func NoteLine(at time.Time, text string) string {
	return fmt.Sprintf("[%s] %s", at.Format(NoteStampLayout), strings.TrimSpace(text))
}

// AppendLine devolve notes com a linha nova no final, separada por quebra de linha.
func AppendLine(notes, line string) string {
	if strings.TrimSpace(notes) == "" {
		return line
	}
	return notes + "\n" + line
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	// FindByNameFragment faz match case-insensitive por substring no nome,
	// restrito ao usuário. Empate: o lead criado mais recentemente.
	FindByNameFragment(ctx context.Context, userID, fragment string) (*Lead, error)
	AppendNote(ctx context.Context, leadID, line string) error
	SetReminder(ctx context.Context, leadID string, at time.Time, line string) error
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
