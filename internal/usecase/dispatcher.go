package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

// Dispatcher executa uma ferramenta escolhida pelo modelo (ou pela UI)
// contra a camada de persistência. Nunca apaga: só insere ou anexa.
type Dispatcher struct {
	Leads     entity.LeadRepositoryInterface
	Notes     entity.NoteRepositoryInterface
	Posts     entity.SocialPostRepositoryInterface
	Projects  entity.ProjectRepositoryInterface
	Publisher PostPublisher
	Location  *time.Location
	Logger    *zap.Logger

	now func() time.Time
}

func NewDispatcher(
	leads entity.LeadRepositoryInterface,
	notes entity.NoteRepositoryInterface,
	posts entity.SocialPostRepositoryInterface,
	projects entity.ProjectRepositoryInterface,
	publisher PostPublisher,
	loc *time.Location,
	logger *zap.Logger,
) *Dispatcher {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		Leads:     leads,
		Notes:     notes,
		Posts:     posts,
		Projects:  projects,
		Publisher: publisher,
		Location:  loc,
		Logger:    logger,
		now:       time.Now,
	}
}

// WithClock troca o relógio (testes e CLI).
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func (d *Dispatcher) currentTime() time.Time {
	return d.now().In(d.Location)
}

// Execute decodifica e roda a ferramenta. Falhas viram {success:false}.
func (d *Dispatcher) Execute(ctx context.Context, input ExecuteToolInput) ToolResult {
	if input.UserID == "" {
		return ToolResult{Success: false, Message: "user_id é obrigatório"}
	}

	args, err := DecodeToolCall(input.ToolName, input.ToolArgs)
	if err != nil {
		return d.failure(input.ToolName, err)
	}
	return d.Run(ctx, input.UserID, args)
}

func (d *Dispatcher) Run(ctx context.Context, userID string, args ToolArgs) ToolResult {
	var (
		result ToolResult
		err    error
	)

	switch a := args.(type) {
	case CreateLeadArgs:
		result, err = d.createLead(ctx, userID, a)
	case AddNoteToLeadArgs:
		result, err = d.addNoteToLead(ctx, userID, a)
	case AddNoteArgs:
		result, err = d.addNote(ctx, userID, a)
	case SetReminderArgs:
		result, err = d.setReminder(ctx, userID, a)
	case SaveSiteProgressArgs:
		result, err = d.saveSiteProgress(ctx, userID, a)
	case SchedulePostArgs:
		result, err = d.schedulePost(ctx, userID, a)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownTool, args)
	}

	if err != nil {
		return d.failure(toolLabel(args), err)
	}

	d.Logger.Info("ferramenta executada",
		zap.String("tool", toolLabel(args)),
		zap.String("user_id", userID),
	)
	return result
}

func (d *Dispatcher) failure(tool string, err error) ToolResult {
	switch {
	case IsDomainError(err):
		d.Logger.Info("ferramenta recusada", zap.String("tool", tool), zap.String("motivo", err.Error()))
	case errors.Is(err, ErrUnknownTool):
		d.Logger.Warn("ferramenta desconhecida", zap.String("tool", tool))
	default:
		d.Logger.Error("falha ao executar ferramenta", zap.String("tool", tool), zap.Error(err))
	}
	return ToolResult{Success: false, Message: err.Error()}
}

func toolLabel(args ToolArgs) string {
	if args == nil {
		return ""
	}
	return string(args.Tool())
}

// formatWhen é o formato usado nas mensagens ao usuário.
func formatWhen(t time.Time) string {
	return t.Format("02/01/2006") + " às " + t.Format("15:04")
}
