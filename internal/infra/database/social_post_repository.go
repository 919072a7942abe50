package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type SocialPostRepository struct {
	DB *sql.DB
}

func NewSocialPostRepository(db *sql.DB) *SocialPostRepository {
	return &SocialPostRepository{DB: db}
}

const postColumns = `id, user_id, platform, COALESCE(caption, ''), media_url, status,
	scheduled_at, published_at, platform_post_id, error_message, created_at, updated_at`

func (r *SocialPostRepository) FindByID(ctx context.Context, userID, id string) (*entity.SocialPost, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM social_posts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar post: %w", err)
	}
	return post, nil
}

// FindSchedulable: draft/failed do usuário (plataforma opcional). Quem casa
// com a legenda vem primeiro; depois, o mais recente.
func (r *SocialPostRepository) FindSchedulable(ctx context.Context, filter entity.PostFilter) (*entity.SocialPost, error) {
	statuses := make([]string, len(entity.SchedulableStatuses))
	for i, s := range entity.SchedulableStatuses {
		statuses[i] = string(s)
	}

	query := `
		SELECT ` + postColumns + `
		FROM social_posts
		WHERE user_id = $1
		  AND status = ANY($2)
		  AND ($3 = '' OR LOWER(platform) = LOWER($3))
		ORDER BY COALESCE($4 <> '' AND caption ILIKE '%' || $4 || '%' ESCAPE '\', FALSE) DESC,
		         created_at DESC, id DESC
		LIMIT 1
	`
	row := r.DB.QueryRowContext(ctx, query,
		filter.UserID,
		pq.Array(statuses),
		filter.Platform,
		escapeLike(filter.Search),
	)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNoSchedulablePost
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar post agendável: %w", err)
	}
	return post, nil
}

func (r *SocialPostRepository) BeginScheduling(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, `
		UPDATE social_posts
		SET status = 'scheduling', scheduled_at = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, at, pq.Array([]string{string(entity.PostStatusDraft), string(entity.PostStatusFailed)}),
	)
}

// RevertScheduling aceita 'failed' porque o handler de publicação pode ter
// marcado a falha antes da compensação rodar.
func (r *SocialPostRepository) RevertScheduling(ctx context.Context, id, reason string) error {
	return r.transition(ctx, `
		UPDATE social_posts
		SET status = 'failed', scheduled_at = NULL, error_message = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, reason, pq.Array([]string{string(entity.PostStatusScheduling), string(entity.PostStatusFailed)}),
	)
}

func (r *SocialPostRepository) MarkScheduled(ctx context.Context, id, platformPostID string) error {
	return r.transition(ctx, `
		UPDATE social_posts
		SET status = 'scheduled', platform_post_id = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, platformPostID, pq.Array(sourcesOf(entity.PostStatusScheduled)),
	)
}

func (r *SocialPostRepository) MarkPublished(ctx context.Context, id, platformPostID string, at time.Time) error {
	return r.transition(ctx, `
		UPDATE social_posts
		SET status = 'published', platform_post_id = $2, published_at = $4, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, platformPostID, pq.Array(sourcesOf(entity.PostStatusPublished)), at,
	)
}

func (r *SocialPostRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.transition(ctx, `
		UPDATE social_posts
		SET status = 'failed', error_message = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)`,
		id, reason, pq.Array(sourcesOf(entity.PostStatusFailed)),
	)
}

func (r *SocialPostRepository) FailStaleScheduling(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE social_posts
		SET status = 'failed', scheduled_at = NULL,
		    error_message = 'agendamento interrompido', updated_at = NOW()
		WHERE status = 'scheduling' AND updated_at < $1`,
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("erro ao liberar posts travados: %w", err)
	}
	return res.RowsAffected()
}

func (r *SocialPostRepository) transition(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("erro ao atualizar status do post: %w", translateError(err))
	}
	return expectOne(res, entity.ErrInvalidTransition)
}

// sourcesOf lista os status de onde CanTransition permite ir para "to".
func sourcesOf(to entity.PostStatus) []string {
	all := []entity.PostStatus{
		entity.PostStatusDraft,
		entity.PostStatusScheduling,
		entity.PostStatusScheduled,
		entity.PostStatusPublished,
		entity.PostStatusFailed,
	}
	var out []string
	for _, s := range all {
		if s.CanTransition(to) {
			out = append(out, string(s))
		}
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*entity.SocialPost, error) {
	var (
		p                         entity.SocialPost
		status                    string
		media, platformID, errMsg sql.NullString
		scheduledAt, publishedAt  sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Platform, &p.Caption, &media, &status,
		&scheduledAt, &publishedAt, &platformID, &errMsg, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = entity.PostStatus(status)
	p.MediaURL = ptrString(media)
	p.ScheduledAt = ptrTime(scheduledAt)
	p.PublishedAt = ptrTime(publishedAt)
	p.PlatformPostID = ptrString(platformID)
	p.ErrorMessage = ptrString(errMsg)
	return &p, nil
}
