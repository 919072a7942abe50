package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/nldate"
)

// schedulePost: draft|failed -> scheduling -> (publicação síncrona) -> scheduled.
// Se a publicação falha, a compensação devolve o post para failed sem scheduled_at.
func (d *Dispatcher) schedulePost(ctx context.Context, userID string, args SchedulePostArgs) (ToolResult, error) {
	when, err := nldate.ParseRelativeDate(args.ScheduledDate, d.currentTime(), nldate.PostDefault)
	if err != nil {
		return ToolResult{}, domainErr("INVALID_DATE", fmt.Sprintf("Não entendi a data \"%s\"", args.ScheduledDate))
	}

	post, err := d.Posts.FindSchedulable(ctx, entity.PostFilter{
		UserID:   userID,
		Platform: args.Platform,
		Search:   args.PostSearch,
	})
	if errors.Is(err, entity.ErrNoSchedulablePost) {
		return ToolResult{}, domainErr("NO_POST", noPostMessage(args))
	}
	if err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao buscar post", err)
	}

	txn := NewTransaction()
	txn.AddStep("begin_scheduling",
		func(ctx context.Context) error {
			return d.Posts.BeginScheduling(ctx, post.ID, when)
		},
		func(ctx context.Context, cause error) error {
			return d.Posts.RevertScheduling(ctx, post.ID, cause.Error())
		},
	)
	txn.AddStep("publish",
		func(ctx context.Context) error {
			return d.Publisher.Publish(ctx, userID, post.ID)
		},
		nil,
	)

	if err := txn.Execute(ctx); err != nil {
		var stepErr *StepError
		if errors.As(err, &stepErr) && stepErr.CompensationErr != nil {
			d.Logger.Error("agendamento inconsistente: compensação falhou",
				zap.String("post_id", post.ID),
				zap.Error(stepErr.CompensationErr),
			)
		}
		// Só a transição inicial indica corrida de status; o mesmo erro vindo
		// da publicação é falha técnica.
		if stepErr != nil && stepErr.Step == "begin_scheduling" && errors.Is(err, entity.ErrInvalidTransition) {
			return ToolResult{}, domainErr("INVALID_TRANSITION", "O post mudou de status e não pode mais ser agendado")
		}
		return ToolResult{}, technicalErr("PUBLISH_FAILED", "Falha ao agendar o post; o agendamento foi desfeito", errors.Unwrap(err))
	}

	msg := fmt.Sprintf("Post agendado para %s no %s", formatWhen(when), post.Platform)
	if args.PostSearch != "" && !strings.Contains(strings.ToLower(post.Caption), strings.ToLower(args.PostSearch)) {
		msg += fmt.Sprintf(" (nenhum post com \"%s\"; usei o post mais recente)", args.PostSearch)
	}
	return ok(
		msg,
		map[string]string{"post_id": post.ID, "scheduled_at": when.Format("2006-01-02T15:04:05Z07:00")},
	), nil
}

func noPostMessage(args SchedulePostArgs) string {
	msg := "Nenhum post em rascunho encontrado"
	if args.Platform != "" {
		msg += " para " + args.Platform
	}
	return msg
}
