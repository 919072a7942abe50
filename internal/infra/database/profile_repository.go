package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var (
		p            entity.Profile
		email, phone sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, COALESCE(full_name, ''), email, phone FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.FullName, &email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar perfil: %w", err)
	}
	p.Email = ptrString(email)
	p.Phone = ptrString(phone)
	return &p, nil
}
