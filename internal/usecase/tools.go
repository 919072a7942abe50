package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
)

// ToolName é o conjunto fechado de operações que o concierge executa.
type ToolName string

const (
	ToolCreateLead       ToolName = "create_lead"
	ToolAddNoteToLead    ToolName = "add_note_to_lead"
	ToolAddNote          ToolName = "add_note"
	ToolSetReminder      ToolName = "set_reminder"
	ToolSaveSiteProgress ToolName = "save_site_progress"
	ToolSchedulePost     ToolName = "schedule_post"
)

// AllTools define também a ordem do menu enviado ao modelo.
var AllTools = []ToolName{
	ToolCreateLead,
	ToolAddNoteToLead,
	ToolAddNote,
	ToolSetReminder,
	ToolSaveSiteProgress,
	ToolSchedulePost,
}

var ErrUnknownTool = errors.New("ferramenta desconhecida")

// ToolArgs é implementado pelos argumentos tipados de cada ferramenta.
type ToolArgs interface {
	Tool() ToolName
	Validate() error
}

type CreateLeadArgs struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (CreateLeadArgs) Tool() ToolName { return ToolCreateLead }

func (a CreateLeadArgs) Validate() error {
	return asValidationFailure(ToolCreateLead, validateCreateLeadArgs(a))
}

type AddNoteToLeadArgs struct {
	LeadName string `json:"lead_name"`
	Note     string `json:"note"`
}

func (AddNoteToLeadArgs) Tool() ToolName { return ToolAddNoteToLead }

func (a AddNoteToLeadArgs) Validate() error {
	var errs []ValidationError
	errs = required(errs, "lead_name", a.LeadName)
	errs = required(errs, "note", a.Note)
	return asValidationFailure(ToolAddNoteToLead, errs)
}

type AddNoteArgs struct {
	Content string `json:"content"`
}

func (AddNoteArgs) Tool() ToolName { return ToolAddNote }

func (a AddNoteArgs) Validate() error {
	return asValidationFailure(ToolAddNote, required(nil, "content", a.Content))
}

type SetReminderArgs struct {
	Task     string `json:"task"`
	DueDate  string `json:"due_date"`
	LeadName string `json:"lead_name,omitempty"`
}

func (SetReminderArgs) Tool() ToolName { return ToolSetReminder }

func (a SetReminderArgs) Validate() error {
	var errs []ValidationError
	errs = required(errs, "task", a.Task)
	errs = required(errs, "due_date", a.DueDate)
	return asValidationFailure(ToolSetReminder, errs)
}

// SaveSiteProgressArgs.Sections aceita objeto JSON, string com JSON ou texto livre.
type SaveSiteProgressArgs struct {
	ProjectName string          `json:"project_name"`
	Sections    json.RawMessage `json:"sections"`
}

func (SaveSiteProgressArgs) Tool() ToolName { return ToolSaveSiteProgress }

func (a SaveSiteProgressArgs) Validate() error {
	var errs []ValidationError
	errs = required(errs, "project_name", a.ProjectName)
	if len(bytes.TrimSpace(a.Sections)) == 0 || string(a.Sections) == "null" {
		errs = append(errs, ValidationError{"sections", "é obrigatório"})
	}
	return asValidationFailure(ToolSaveSiteProgress, errs)
}

type SchedulePostArgs struct {
	ScheduledDate string `json:"scheduled_date"`
	PostSearch    string `json:"post_search,omitempty"`
	Platform      string `json:"platform,omitempty"`
}

func (SchedulePostArgs) Tool() ToolName { return ToolSchedulePost }

func (a SchedulePostArgs) Validate() error {
	return asValidationFailure(ToolSchedulePost, required(nil, "scheduled_date", a.ScheduledDate))
}

// ToolSpec é a entrada do registro: descrição, schema dos parâmetros e decoder.
type ToolSpec struct {
	Name        ToolName
	Description string
	Parameters  map[string]any
	decode      func(json.RawMessage) (ToolArgs, error)
}

var registry = map[ToolName]ToolSpec{
	ToolCreateLead: {
		Name:        ToolCreateLead,
		Description: "Cria um novo lead no CRM do usuário.",
		Parameters: objectSchema([]string{"name"}, map[string]string{
			"name":  "Nome do lead",
			"email": "E-mail do lead",
			"phone": "Telefone com DDD",
			"notes": "Observações iniciais",
		}),
		decode: decodeArgs[CreateLeadArgs],
	},
	ToolAddNoteToLead: {
		Name:        ToolAddNoteToLead,
		Description: "Adiciona uma anotação a um lead existente, buscando pelo nome (ou parte dele).",
		Parameters: objectSchema([]string{"lead_name", "note"}, map[string]string{
			"lead_name": "Nome ou parte do nome do lead",
			"note":      "Texto da anotação",
		}),
		decode: decodeArgs[AddNoteToLeadArgs],
	},
	ToolAddNote: {
		Name:        ToolAddNote,
		Description: "Salva uma anotação avulsa do usuário.",
		Parameters: objectSchema([]string{"content"}, map[string]string{
			"content": "Texto da anotação",
		}),
		decode: decodeArgs[AddNoteArgs],
	},
	ToolSetReminder: {
		Name:        ToolSetReminder,
		Description: "Cria um lembrete. Se lead_name for informado, o lembrete fica no lead.",
		Parameters: objectSchema([]string{"task", "due_date"}, map[string]string{
			"task":      "O que deve ser lembrado",
			"due_date":  "Quando, em linguagem natural (ex: 'amanhã às 10h', 'sexta 14h') ou ISO",
			"lead_name": "Nome do lead relacionado (opcional)",
		}),
		decode: decodeArgs[SetReminderArgs],
	},
	ToolSaveSiteProgress: {
		Name:        ToolSaveSiteProgress,
		Description: "Salva o progresso das seções do site de um projeto.",
		Parameters: objectSchema([]string{"project_name", "sections"}, map[string]string{
			"project_name": "Nome exato do projeto",
			"sections":     "Seções do site em JSON",
		}),
		decode: decodeArgs[SaveSiteProgressArgs],
	},
	ToolSchedulePost: {
		Name:        ToolSchedulePost,
		Description: "Agenda um post em rascunho (ou que falhou) e envia para publicação.",
		Parameters: objectSchema([]string{"scheduled_date"}, map[string]string{
			"scheduled_date": "Quando publicar, em linguagem natural ou ISO",
			"post_search":    "Trecho da legenda para encontrar o post",
			"platform":       "Plataforma (instagram, facebook, linkedin...)",
		}),
		decode: decodeArgs[SchedulePostArgs],
	},
}

func LookupTool(name string) (ToolSpec, bool) {
	spec, ok := registry[ToolName(name)]
	return spec, ok
}

// ToolMenu devolve as definições no formato de function calling do gateway.
func ToolMenu() []llm.Tool {
	tools := make([]llm.Tool, 0, len(AllTools))
	for _, name := range AllTools {
		spec := registry[name]
		tools = append(tools, llm.Tool{
			Type: "function",
			Function: llm.FunctionDefinition{
				Name:        string(spec.Name),
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}

// DecodeToolCall converte nome + argumentos crus em argumentos tipados e validados.
// Os argumentos podem vir como objeto ou como string JSON (formato do modelo).
func DecodeToolCall(name string, raw json.RawMessage) (ToolArgs, error) {
	spec, ok := LookupTool(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	normalized, err := unwrapStringArgs(raw)
	if err != nil {
		return nil, &DomainError{Code: "INVALID_ARGS", Message: "Argumentos inválidos para " + name}
	}
	return spec.decode(normalized)
}

func decodeArgs[T ToolArgs](raw json.RawMessage) (ToolArgs, error) {
	var args T
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &DomainError{
				Code:    "INVALID_ARGS",
				Message: fmt.Sprintf("Argumentos inválidos para %s: %v", args.Tool(), err),
			}
		}
	}

	if err := args.Validate(); err != nil {
		return nil, err
	}
	return args, nil
}

func unwrapStringArgs(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return json.RawMessage(s), nil
}

func objectSchema(required []string, props map[string]string) map[string]any {
	properties := make(map[string]any, len(props))
	for name, desc := range props {
		properties[name] = map[string]any{"type": "string", "description": desc}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
