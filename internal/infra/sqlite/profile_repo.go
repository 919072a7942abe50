package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var (
		p            entity.Profile
		email, phone sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(full_name, ''), email, phone FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.FullName, &email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Email = ptrString(email)
	p.Phone = ptrString(phone)
	return &p, nil
}

func (r *ProfileRepo) Save(ctx context.Context, p *entity.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles(id, full_name, email, phone) VALUES(?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, email = excluded.email, phone = excluded.phone`,
		p.ID, p.FullName, nullString(p.Email), nullString(p.Phone),
	)
	return err
}
