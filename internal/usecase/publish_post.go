package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
)

// PublishPostUseCase é o handler de publicação: envia o post para a
// plataforma e grava o status final (scheduled, published ou failed).
type PublishPostUseCase struct {
	Posts   entity.SocialPostRepositoryInterface
	Gateway SocialGateway
	Logger  *zap.Logger

	now func() time.Time
}

func NewPublishPostUseCase(posts entity.SocialPostRepositoryInterface, gateway SocialGateway, logger *zap.Logger) *PublishPostUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishPostUseCase{
		Posts:   posts,
		Gateway: gateway,
		Logger:  logger,
		now:     time.Now,
	}
}

func (uc *PublishPostUseCase) WithClock(now func() time.Time) *PublishPostUseCase {
	uc.now = now
	return uc
}

// Publish satisfaz PostPublisher para uso em processo.
func (uc *PublishPostUseCase) Publish(ctx context.Context, userID, postID string) error {
	_, err := uc.Execute(ctx, PublishPostInput{UserID: userID, PostID: postID})
	return err
}

func (uc *PublishPostUseCase) Execute(ctx context.Context, input PublishPostInput) (*PublishPostOutput, error) {
	if input.UserID == "" || input.PostID == "" {
		return nil, domainErr("VALIDATION_ERROR", "user_id e post_id são obrigatórios")
	}

	post, err := uc.Posts.FindByID(ctx, input.UserID, input.PostID)
	if errors.Is(err, entity.ErrPostNotFound) {
		return nil, domainErr("POST_NOT_FOUND", "Post não encontrado")
	}
	if err != nil {
		return nil, technicalErr("DATABASE_ERROR", "Erro ao buscar post", err)
	}

	if !post.Status.CanTransition(entity.PostStatusPublished) {
		return nil, domainErr("INVALID_STATUS", "Post com status "+string(post.Status)+" não pode ser publicado")
	}

	now := uc.now()
	future := post.ScheduledAt != nil && post.ScheduledAt.After(now.Add(time.Minute))

	req := ayrshare.PostInput{
		Post:      post.Caption,
		Platforms: []string{post.Platform},
	}
	if post.MediaURL != nil {
		req.MediaURLs = []string{*post.MediaURL}
	}
	if future {
		req.ScheduleDate = post.ScheduledAt
	}

	out, err := uc.Gateway.Publish(ctx, req)
	if err != nil {
		if markErr := uc.Posts.MarkFailed(context.WithoutCancel(ctx), post.ID, err.Error()); markErr != nil {
			uc.Logger.Error("falha ao marcar post como failed", zap.String("post_id", post.ID), zap.Error(markErr))
		}
		return nil, technicalErr("PUBLISH_FAILED", "Falha ao publicar post", err)
	}

	if future {
		if err := uc.Posts.MarkScheduled(ctx, post.ID, out.ID); err != nil {
			return nil, technicalErr("DATABASE_ERROR", "Post enviado, mas falhou ao gravar status", err)
		}
		uc.Logger.Info("post agendado na plataforma",
			zap.String("post_id", post.ID),
			zap.String("platform", post.Platform),
			zap.Time("scheduled_at", *post.ScheduledAt),
		)
		return &PublishPostOutput{
			PostID:         post.ID,
			Status:         string(entity.PostStatusScheduled),
			PlatformPostID: out.ID,
			Msg:            "Post agendado com sucesso",
		}, nil
	}

	if err := uc.Posts.MarkPublished(ctx, post.ID, out.ID, now); err != nil {
		return nil, technicalErr("DATABASE_ERROR", "Post publicado, mas falhou ao gravar status", err)
	}
	uc.Logger.Info("post publicado", zap.String("post_id", post.ID), zap.String("platform", post.Platform))

	return &PublishPostOutput{
		PostID:         post.ID,
		Status:         string(entity.PostStatusPublished),
		PlatformPostID: out.ID,
		Msg:            "Post publicado com sucesso",
	}, nil
}
