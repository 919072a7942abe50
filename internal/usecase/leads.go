package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

func (d *Dispatcher) createLead(ctx context.Context, userID string, args CreateLeadArgs) (ToolResult, error) {
	lead, err := entity.NewLead(userID, args.Name, args.Email, args.Phone, args.Notes)
	if err != nil {
		return ToolResult{}, domainErr("VALIDATION_ERROR", err.Error())
	}

	if err := d.Leads.Create(ctx, lead); err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao criar lead", err)
	}

	return ok(fmt.Sprintf("Lead %s criado com sucesso!", lead.Name), map[string]string{"lead_id": lead.ID}), nil
}

func (d *Dispatcher) addNoteToLead(ctx context.Context, userID string, args AddNoteToLeadArgs) (ToolResult, error) {
	lead, err := d.findLead(ctx, userID, args.LeadName)
	if err != nil {
		return ToolResult{}, err
	}

	line := entity.NoteLine(d.currentTime(), args.Note)
	if err := d.Leads.AppendNote(ctx, lead.ID, line); err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao salvar anotação", err)
	}

	return ok(fmt.Sprintf("Anotação adicionada ao lead %s", lead.Name), map[string]string{"lead_id": lead.ID}), nil
}

// findLead resolve o lead por substring do nome. Sem resultado vira DomainError.
func (d *Dispatcher) findLead(ctx context.Context, userID, fragment string) (*entity.Lead, error) {
	lead, err := d.Leads.FindByNameFragment(ctx, userID, fragment)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, domainErr("LEAD_NOT_FOUND", fmt.Sprintf("Lead \"%s\" não encontrado", fragment))
	}
	if err != nil {
		return nil, technicalErr("DATABASE_ERROR", "Erro ao buscar lead", err)
	}
	return lead, nil
}
