package usecase

import (
	"context"

	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
)

// PostPublisher é o handler de publicação chamado de forma síncrona pelo
// schedule_post (cliente HTTP ou o próprio PublishPostUseCase).
type PostPublisher interface {
	Publish(ctx context.Context, userID, postID string) error
}

// SocialGateway envia o post para a plataforma (Ayrshare).
type SocialGateway interface {
	Publish(ctx context.Context, input ayrshare.PostInput) (*ayrshare.PostOutput, error)
}

// ChatModel é o gateway de IA compatível com chat-completions.
type ChatModel interface {
	Complete(ctx context.Context, req llm.ChatRequest) (*llm.Completion, error)
	Stream(ctx context.Context, req llm.ChatRequest) (*llm.Stream, error)
}
