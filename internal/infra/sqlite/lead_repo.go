package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type LeadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo {
	return &LeadRepo{db: db}
}

func (r *LeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO leads(id, user_id, name, email, phone, status, ai_classification, notes, reminder_date, source, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		lead.ID, lead.UserID, lead.Name, nullString(lead.Email), nullString(lead.Phone), lead.Status,
		nullString(lead.AIClassification), lead.Notes, nullTime(lead.ReminderDate), lead.Source,
		utc(lead.CreatedAt), utc(lead.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir lead: %w", err)
	}
	return nil
}

func (r *LeadRepo) FindByNameFragment(ctx context.Context, userID, fragment string) (*entity.Lead, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, email, phone, status, ai_classification, COALESCE(notes, ''),
		        reminder_date, COALESCE(source, ''), created_at, updated_at
		 FROM leads WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar lead: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		if containsFold(lead.Name, fragment) {
			return lead, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, entity.ErrLeadNotFound
}

// Get devolve o lead pelo ID.
func (r *LeadRepo) Get(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, email, phone, status, ai_classification, COALESCE(notes, ''),
		        reminder_date, COALESCE(source, ''), created_at, updated_at
		 FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	return lead, err
}

func (r *LeadRepo) AppendNote(ctx context.Context, leadID, line string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads
		 SET notes = CASE WHEN COALESCE(notes, '') = '' THEN ? ELSE notes || char(10) || ? END,
		     updated_at = ?
		 WHERE id = ?`,
		line, line, utc(time.Now()), leadID,
	)
	if err != nil {
		return fmt.Errorf("erro ao anexar nota: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

func (r *LeadRepo) SetReminder(ctx context.Context, leadID string, at time.Time, line string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE leads
		 SET reminder_date = ?,
		     notes = CASE WHEN COALESCE(notes, '') = '' THEN ? ELSE notes || char(10) || ? END,
		     updated_at = ?
		 WHERE id = ?`,
		utc(at), line, line, utc(time.Now()), leadID,
	)
	if err != nil {
		return fmt.Errorf("erro ao definir lembrete do lead: %w", err)
	}
	return expectOne(res, entity.ErrLeadNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLead(row scanner) (*entity.Lead, error) {
	var (
		l                     entity.Lead
		email, phone, aiClass sql.NullString
		reminder              sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Name, &email, &phone, &l.Status, &aiClass,
		&l.Notes, &reminder, &l.Source, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Email = ptrString(email)
	l.Phone = ptrString(phone)
	l.AIClassification = ptrString(aiClass)
	l.ReminderDate = ptrTime(reminder)
	return &l, nil
}
