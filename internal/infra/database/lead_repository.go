package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, user_id, name, email, phone, status, notes, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.Name,
		nullString(lead.Email),
		nullString(lead.Phone),
		lead.Status,
		lead.Notes,
		lead.Source,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir lead: %w", translateError(err))
	}
	return nil
}

// FindByNameFragment: ILIKE por substring, mais recente primeiro.
func (r *LeadRepository) FindByNameFragment(ctx context.Context, userID, fragment string) (*entity.Lead, error) {
	query := `
		SELECT id, user_id, name, email, phone, status, ai_classification,
		       COALESCE(notes, ''), reminder_date, COALESCE(source, ''), created_at, updated_at
		FROM leads
		WHERE user_id = $1 AND name ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var (
		lead           entity.Lead
		email, phone   sql.NullString
		classification sql.NullString
		reminder       sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, query, userID, escapeLike(fragment)).Scan(
		&lead.ID,
		&lead.UserID,
		&lead.Name,
		&email,
		&phone,
		&lead.Status,
		&classification,
		&lead.Notes,
		&reminder,
		&lead.Source,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}

	lead.Email = ptrString(email)
	lead.Phone = ptrString(phone)
	lead.AIClassification = ptrString(classification)
	lead.ReminderDate = ptrTime(reminder)
	return &lead, nil
}

// AppendNote anexa a linha no próprio UPDATE, sem ler antes.
func (r *LeadRepository) AppendNote(ctx context.Context, leadID, line string) error {
	query := `
		UPDATE leads
		SET notes = CASE WHEN COALESCE(notes, '') = '' THEN $2 ELSE notes || E'\n' || $2 END,
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, leadID, line)
	if err != nil {
		return fmt.Errorf("erro ao anexar nota: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func (r *LeadRepository) SetReminder(ctx context.Context, leadID string, at time.Time, line string) error {
	query := `
		UPDATE leads
		SET reminder_date = $2,
		    notes = CASE WHEN COALESCE(notes, '') = '' THEN $3 ELSE notes || E'\n' || $3 END,
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, leadID, at, line)
	if err != nil {
		return fmt.Errorf("erro ao definir lembrete do lead: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}
