package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

func (d *Dispatcher) saveSiteProgress(ctx context.Context, userID string, args SaveSiteProgressArgs) (ToolResult, error) {
	content := normalizeSections(args.Sections)

	created, err := d.Projects.UpsertContent(ctx, userID, args.ProjectName, content)
	if err != nil {
		return ToolResult{}, technicalErr("DATABASE_ERROR", "Erro ao salvar progresso do site", err)
	}

	if created {
		return ok(fmt.Sprintf("Projeto %s criado e progresso salvo!", args.ProjectName), nil), nil
	}
	return ok(fmt.Sprintf("Progresso do projeto %s salvo!", args.ProjectName), nil), nil
}

// normalizeSections aceita objeto/array JSON, string contendo JSON, ou texto
// livre. O que não for JSON válido é guardado como {"raw": "..."}.
func normalizeSections(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			trimmed = bytes.TrimSpace([]byte(s))
		}
	}

	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}

	wrapped, _ := json.Marshal(map[string]string{"raw": string(trimmed)})
	return wrapped
}
