package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

type PostRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{db: db, now: time.Now}
}

const postColumns = `id, user_id, platform, COALESCE(caption, ''), media_url, status,
	scheduled_at, published_at, platform_post_id, error_message, created_at, updated_at`

// Create insere um post (os posts nascem na UI; aqui serve à CLI e aos testes).
func (r *PostRepo) Create(ctx context.Context, p *entity.SocialPost) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO social_posts(id, user_id, platform, caption, media_url, status, scheduled_at,
		                          published_at, platform_post_id, error_message, created_at, updated_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Platform, p.Caption, nullString(p.MediaURL), string(p.Status),
		nullTime(p.ScheduledAt), nullTime(p.PublishedAt), nullString(p.PlatformPostID), nullString(p.ErrorMessage),
		utc(p.CreatedAt), utc(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("erro ao inserir post: %w", err)
	}
	return nil
}

func (r *PostRepo) FindByID(ctx context.Context, userID, id string) (*entity.SocialPost, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM social_posts WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPostNotFound
	}
	return post, err
}

func (r *PostRepo) FindSchedulable(ctx context.Context, filter entity.PostFilter) (*entity.SocialPost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM social_posts
		 WHERE user_id = ? AND status IN (?, ?)
		 ORDER BY created_at DESC, rowid DESC`,
		filter.UserID, string(entity.PostStatusDraft), string(entity.PostStatusFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar post agendável: %w", err)
	}
	defer rows.Close()

	var newest *entity.SocialPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		if filter.Platform != "" && !strings.EqualFold(post.Platform, filter.Platform) {
			continue
		}
		if filter.Search == "" || containsFold(post.Caption, filter.Search) {
			return post, nil
		}
		if newest == nil {
			newest = post
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if newest == nil {
		return nil, entity.ErrNoSchedulablePost
	}
	return newest, nil
}

func (r *PostRepo) BeginScheduling(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx, id, entity.PostStatusScheduling,
		`scheduled_at = ?, error_message = NULL`, utc(at))
}

func (r *PostRepo) RevertScheduling(ctx context.Context, id, reason string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE social_posts SET status = 'failed', scheduled_at = NULL, error_message = ?, updated_at = ?
		 WHERE id = ? AND status IN ('scheduling', 'failed')`,
		reason, utc(r.now()), id,
	)
	if err != nil {
		return fmt.Errorf("erro ao reverter agendamento: %w", err)
	}
	return expectOne(res, entity.ErrInvalidTransition)
}

func (r *PostRepo) MarkScheduled(ctx context.Context, id, platformPostID string) error {
	return r.transition(ctx, id, entity.PostStatusScheduled,
		`platform_post_id = ?, error_message = NULL`, platformPostID)
}

func (r *PostRepo) MarkPublished(ctx context.Context, id, platformPostID string, at time.Time) error {
	return r.transition(ctx, id, entity.PostStatusPublished,
		`platform_post_id = ?, published_at = ?, error_message = NULL`, platformPostID, utc(at))
}

func (r *PostRepo) MarkFailed(ctx context.Context, id, reason string) error {
	return r.transition(ctx, id, entity.PostStatusFailed, `error_message = ?`, reason)
}

func (r *PostRepo) FailStaleScheduling(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE social_posts SET status = 'failed', scheduled_at = NULL,
		        error_message = 'agendamento interrompido', updated_at = ?
		 WHERE status = 'scheduling' AND updated_at < ?`,
		utc(r.now()), utc(olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("erro ao liberar posts travados: %w", err)
	}
	return res.RowsAffected()
}

// transition aplica "to" só se o status atual permitir (CanTransition).
func (r *PostRepo) transition(ctx context.Context, id string, to entity.PostStatus, set string, args ...any) error {
	var from []any
	var marks []string
	for _, s := range []entity.PostStatus{
		entity.PostStatusDraft, entity.PostStatusScheduling, entity.PostStatusScheduled,
		entity.PostStatusPublished, entity.PostStatusFailed,
	} {
		if s.CanTransition(to) {
			from = append(from, string(s))
			marks = append(marks, "?")
		}
	}

	query := `UPDATE social_posts SET status = ?, ` + set + `, updated_at = ?
		WHERE id = ? AND status IN (` + strings.Join(marks, ",") + `)`

	params := append([]any{string(to)}, args...)
	params = append(params, utc(r.now()), id)
	params = append(params, from...)

	res, err := r.db.ExecContext(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("erro ao atualizar status do post: %w", err)
	}
	return expectOne(res, entity.ErrInvalidTransition)
}

func scanPost(row scanner) (*entity.SocialPost, error) {
	var (
		p                         entity.SocialPost
		status                    string
		media, platformID, errMsg sql.NullString
		scheduledAt, publishedAt  sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Platform, &p.Caption, &media, &status,
		&scheduledAt, &publishedAt, &platformID, &errMsg, &p.CreatedAt, &p.UpdatedAt); err != nil {
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
