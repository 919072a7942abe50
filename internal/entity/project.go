package entity

import (
	"context"
	"encoding/json"
	"time"
)

// Project guarda o progresso do site gerado para o usuário (seções em JSON)
type Project struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ProjectRepositoryInterface interface {
	// UpsertContent atualiza o content do projeto com nome exato ou cria um novo.
	UpsertContent(ctx context.Context, userID, name string, content json.RawMessage) (created bool, err error)
}
