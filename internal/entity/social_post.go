package entity

import (
	"context"
	"time"
)

type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusScheduling PostStatus = "scheduling"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// SchedulableStatuses são os estados de onde um post pode ser (re)agendado.
var SchedulableStatuses = []PostStatus{PostStatusDraft, PostStatusFailed}

func (s PostStatus) Schedulable() bool {
	return s == PostStatusDraft || s == PostStatusFailed
}

// CanTransition define a máquina de estados do post:
// draft|failed -> scheduling -> scheduled|failed. O handler de publicação
// também leva draft/failed direto para scheduled ou published.
func (s PostStatus) CanTransition(to PostStatus) bool {
	switch to {
	case PostStatusScheduling:
		return s.Schedulable()
	case PostStatusScheduled:
		return s.Schedulable() || s == PostStatusScheduling
	case PostStatusPublished:
		return s.Schedulable() || s == PostStatusScheduling
	case PostStatusFailed:
		return s != PostStatusPublished
	default:
		return false
	}
}

type SocialPost struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Platform       string     `json:"platform"`
	Caption        string     `json:"caption"`
	MediaURL       *string    `json:"media_url,omitempty"`
	Status         PostStatus `json:"status"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	PlatformPostID *string    `json:"platform_post_id,omitempty"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PostFilter descreve a busca do schedule_post. Platform filtra; Search só
// dá preferência ao post cuja legenda contém o trecho.
type PostFilter struct {
	UserID   string
	Platform string
	Search   string
}

type SocialPostRepositoryInterface interface {
	FindByID(ctx context.Context, userID, id string) (*SocialPost, error)
	// FindSchedulable devolve o post draft/failed mais recente cuja legenda
	// contém Search; sem nenhum match, o mais recente da plataforma.
	// ErrNoSchedulablePost só quando não há draft/failed.
	FindSchedulable(ctx context.Context, filter PostFilter) (*SocialPost, error)
	// As transições são condicionais ao status atual (ver CanTransition) e
	// retornam ErrInvalidTransition quando nenhuma linha foi afetada.
	BeginScheduling(ctx context.Context, id string, at time.Time) error
	RevertScheduling(ctx context.Context, id, reason string) error
	MarkScheduled(ctx context.Context, id, platformPostID string) error
	MarkPublished(ctx context.Context, id, platformPostID string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
	FailStaleScheduling(ctx context.Context, olderThan time.Time) (int64, error)
}
