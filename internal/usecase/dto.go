package usecase

import (
	"encoding/json"

	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
)

// ToolResult é o envelope devolvido por toda ferramenta.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(message string, data any) ToolResult {
	return ToolResult{Success: true, Message: message, Data: data}
}

type ExecuteToolInput struct {
	UserID   string          `json:"user_id"`
	ToolName string          `json:"tool_name"`
	ToolArgs json.RawMessage `json:"tool_args"`
}

type ChatInput struct {
	UserID   string        `json:"user_id"`
	Messages []llm.Message `json:"messages"`
	Message  string        `json:"message"`
}

type PublishPostInput struct {
	UserID string `json:"user_id"`
	PostID string `json:"post_id"`
}

type PublishPostOutput struct {
	PostID         string `json:"post_id"`
	Status         string `json:"status"`
	PlatformPostID string `json:"platform_post_id,omitempty"`
	Msg            string `json:"message"`
}
