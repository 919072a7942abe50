package usecase

import (
	"context"
	"fmt"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/nldate"
)

// addNote não tem chave de idempotência: o mesmo comando repetido gera duas notas.
func (d *Dispatcher) addNote(ctx context.Context, userID string, args AddNoteArgs) (ToolResult, error) {
	note, err := entity.NewNote(userID, args.Content)
	if err != nil {
		return ToolResult{}, domainErr("VALIDATION_ERROR", err.Error())
	}

	if err := d.Notes.Create(ctx, note); err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao salvar anotação", err)
	}

	return ok("Anotação salva!", map[string]string{"note_id": note.ID}), nil
}

func (d *Dispatcher) setReminder(ctx context.Context, userID string, args SetReminderArgs) (ToolResult, error) {
	due, err := nldate.ParseRelativeDate(args.DueDate, d.currentTime(), nldate.ReminderDefault)
	if err != nil {
		return ToolResult{}, domainErr("INVALID_DATE", fmt.Sprintf("Não entendi a data \"%s\"", args.DueDate))
	}

	if args.LeadName != "" {
		lead, err := d.findLead(ctx, userID, args.LeadName)
		if err != nil {
			return ToolResult{}, err
		}

		line := entity.NoteLine(d.currentTime(), fmt.Sprintf("Lembrete: %s (%s)", args.Task, formatWhen(due)))
		if err := d.Leads.SetReminder(ctx, lead.ID, due, line); err != nil {
			return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao salvar lembrete no lead", err)
		}

		return ok(
			fmt.Sprintf("Lembrete criado para %s em %s: %s", lead.Name, formatWhen(due), args.Task),
			map[string]string{"lead_id": lead.ID, "due_date": due.Format("2006-01-02T15:04:05Z07:00")},
		), nil
	}

	note, err := entity.NewReminder(userID, args.Task, due)
	if err != nil {
		return ToolResult{}, domainErr("VALIDATION_ERROR", err.Error())
	}
	if err := d.Notes.Create(ctx, note); err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao salvar lembrete", err)
	}

	return ok(
		fmt.Sprintf("Lembrete criado para %s: %s", formatWhen(due), args.Task),
		map[string]string{"note_id": note.ID, "due_date": due.Format("2006-01-02T15:04:05Z07:00")},
	), nil
}
