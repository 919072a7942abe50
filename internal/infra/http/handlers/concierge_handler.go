package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/infra/http/middleware"
	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
	"github.com/xavierca1/nexus-concierge/internal/usecase"
)

type ToolExecutor interface {
	Execute(ctx context.Context, input usecase.ExecuteToolInput) usecase.ToolResult
}

type ChatService interface {
	Stream(ctx context.Context, input usecase.ChatInput) (*llm.Stream, error)
	Narrate(ctx context.Context, tool string, result usecase.ToolResult) (string, error)
}

type ConciergeHandler struct {
	Tools  ToolExecutor
	Chat   ChatService
	Logger *zap.Logger
}

func NewConciergeHandler(tools ToolExecutor, chat ChatService, logger *zap.Logger) *ConciergeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConciergeHandler{Tools: tools, Chat: chat, Logger: logger}
}

type ConciergeRequest struct {
	Messages    []llm.Message   `json:"messages,omitempty"`
	Message     string          `json:"message,omitempty"`
	ExecuteTool bool            `json:"execute_tool,omitempty"`
	ToolName    string          `json:"tool_name,omitempty"`
	ToolArgs    json.RawMessage `json:"tool_args,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	Narrate     bool            `json:"narrate,omitempty"`
}

type ToolResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Narration string `json:"narration,omitempty"`
}

// Handle: execute_tool (ou tool_name) executa direto e responde 200 sempre;
// caso contrário abre o chat em SSE.
func (h *ConciergeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ConciergeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}

	if req.ExecuteTool || req.ToolName != "" {
		h.executeTool(w, r, req)
		return
	}
	h.streamChat(w, r, req)
}

func (h *ConciergeHandler) executeTool(w http.ResponseWriter, r *http.Request, req ConciergeRequest) {
	result := h.Tools.Execute(r.Context(), usecase.ExecuteToolInput{
		UserID:   req.UserID,
		ToolName: req.ToolName,
		ToolArgs: req.ToolArgs,
	})
	middleware.RecordToolExecution(toolLabel(req.ToolName), result.Success)

	resp := ToolResponse{Success: result.Success, Message: result.Message, Data: result.Data}

	if req.Narrate && h.Chat != nil {
		narration, err := h.Chat.Narrate(r.Context(), req.ToolName, result)
		if err != nil {
			// a narração é opcional: o resultado da ferramenta já está pronto
			h.Logger.Warn("falha ao narrar resultado", zap.String("tool", req.ToolName), zap.Error(err))
		} else {
			resp.Narration = narration
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// toolLabel limita a cardinalidade da métrica às ferramentas do registro.
func toolLabel(name string) string {
	if _, ok := usecase.LookupTool(name); !ok {
		return "unknown"
	}
	return name
}

func (h *ConciergeHandler) streamChat(w http.ResponseWriter, r *http.Request, req ConciergeRequest) {
	if strings.TrimSpace(req.Message) == "" && len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "message ou messages é obrigatório")
		return
	}

	stream, err := h.Chat.Stream(r.Context(), usecase.ChatInput{
		UserID:   req.UserID,
		Messages: req.Messages,
		Message:  req.Message,
	})
	if err != nil {
		status, msg := chatErrorStatus(err)
		middleware.RecordChatRequest(fmt.Sprint(status))
		h.Logger.Error("falha ao iniciar chat", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}
	defer stream.Close()
	middleware.RecordChatRequest("200")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	for {
		ev, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.Logger.Error("stream do gateway interrompido", zap.Error(err))
			middleware.RecordIntegrationError("llm")
			writeEvent(w, map[string]string{"type": "error", "error": err.Error()})
			break
		}
		writeEvent(w, ev)
		if err := rc.Flush(); err != nil {
			h.Logger.Debug("flush falhou", zap.Error(err))
		}
		if r.Context().Err() != nil {
			return
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	_ = rc.Flush()
}

func writeEvent(w io.Writer, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", body)
}

// chatErrorStatus: chave ausente vira 500; 429 e 402 do gateway são
// repassados; o resto é 500.
func chatErrorStatus(err error) (int, string) {
	if errors.Is(err, llm.ErrNotConfigured) {
		return http.StatusInternalServerError, "Chave do gateway de IA não configurada"
	}

	var gwErr *llm.GatewayError
	if errors.As(err, &gwErr) {
		switch gwErr.StatusCode {
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests, "Limite de requisições excedido. Tente novamente em instantes."
		case http.StatusPaymentRequired:
			return http.StatusPaymentRequired, "Créditos de IA esgotados. Adicione créditos para continuar."
		}
		middleware.RecordIntegrationError("llm")
		return http.StatusInternalServerError, "Erro no gateway de IA"
	}

	middleware.RecordIntegrationError("llm")
	return http.StatusInternalServerError, "Erro ao falar com o gateway de IA"
}
