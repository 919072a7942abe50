package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/config"
	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/infra/database"
	"github.com/xavierca1/nexus-concierge/internal/infra/sqlite"
)

// storage agrupa os repositórios do backend escolhido.
type storage struct {
	DB       *sql.DB
	Leads    entity.LeadRepositoryInterface
	Notes    entity.NoteRepositoryInterface
	Posts    entity.SocialPostRepositoryInterface
	Projects entity.ProjectRepositoryInterface
	Profiles entity.ProfileRepositoryInterface
}

func openStorage(c config.Config, logger *zap.Logger) (*storage, error) {
	switch c.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(c.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("erro ao abrir sqlite %s: %w", c.Database.Path, err)
		}
		logger.Info("banco SQLite aberto", zap.String("path", c.Database.Path))
		return &storage{
			DB:       db,
			Leads:    sqlite.NewLeadRepo(db),
			Notes:    sqlite.NewNoteRepo(db),
			Posts:    sqlite.NewPostRepo(db),
			Projects: sqlite.NewProjectRepo(db),
			Profiles: sqlite.NewProfileRepo(db),
		}, nil

	default:
		db, err := database.NewDBConnection(c.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("erro ao conectar no Postgres: %w", err)
		}
		logger.Info("conectado ao Postgres")
		return &storage{
			DB:       db,
			Leads:    database.NewLeadRepository(db),
			Notes:    database.NewNoteRepository(db),
			Posts:    database.NewSocialPostRepository(db),
			Projects: database.NewProjectRepository(db),
			Profiles: database.NewProfileRepository(db),
		}, nil
	}
}

func (s *storage) migrate(ctx context.Context, driver string) error {
	if driver == config.DriverSQLite {
		return sqlite.Migrate(ctx, s.DB)
	}
	return database.Migrate(ctx, s.DB)
}

func (s *storage) Close() error {
	return s.DB.Close()
}
