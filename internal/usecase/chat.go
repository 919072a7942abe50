package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
)

var weekdayNames = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

const systemPrompt = `Você é o Nexus Concierge, assistente de um CRM de marketing.
Hoje é %s, %s (fuso %s).
Você pode criar leads, anotar informações em leads, salvar anotações soltas,
criar lembretes, salvar o progresso do site e agendar posts.
Quando o usuário pedir uma dessas ações, chame a ferramenta correspondente.
Datas podem ser relativas ("amanhã às 10h", "sexta 14h30").
Responda sempre em português, de forma curta e amigável.`

const narratePrompt = `Você é o Nexus Concierge. Transforme o resultado de uma ação
em uma frase curta e amigável para o usuário, em português. Não invente dados.`

// ChatUseCase encaminha a conversa ao gateway de IA. Não decide nada:
// quem executa as ferramentas é o Dispatcher.
type ChatUseCase struct {
	Model    ChatModel
	Location *time.Location
	Logger   *zap.Logger

	now func() time.Time
}

func NewChatUseCase(model ChatModel, loc *time.Location, logger *zap.Logger) *ChatUseCase {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatUseCase{Model: model, Location: loc, Logger: logger, now: time.Now}
}

func (uc *ChatUseCase) WithClock(now func() time.Time) *ChatUseCase {
	uc.now = now
	return uc
}

// Stream monta a requisição (prompt de sistema, histórico, menu de
// ferramentas) e abre o streaming. O chamador fecha o stream.
func (uc *ChatUseCase) Stream(ctx context.Context, input ChatInput) (*llm.Stream, error) {
	req := llm.ChatRequest{
		Messages:   uc.buildMessages(input),
		Tools:      ToolMenu(),
		ToolChoice: "auto",
	}

	stream, err := uc.Model.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	uc.Logger.Debug("chat iniciado",
		zap.String("user_id", input.UserID),
		zap.Int("mensagens", len(req.Messages)),
	)
	return stream, nil
}

// Narrate pede ao modelo uma frase curta sobre o resultado de uma ferramenta.
func (uc *ChatUseCase) Narrate(ctx context.Context, tool string, result ToolResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("falha ao serializar resultado: %w", err)
	}

	completion, err := uc.Model.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: narratePrompt},
			{Role: "user", Content: fmt.Sprintf("Ferramenta: %s\nResultado: %s", tool, payload)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (uc *ChatUseCase) buildMessages(input ChatInput) []llm.Message {
	now := uc.now().In(uc.Location)
	messages := make([]llm.Message, 0, len(input.Messages)+2)
	messages = append(messages, llm.Message{
		Role: "system",
		Content: fmt.Sprintf(systemPrompt,
			weekdayNames[now.Weekday()],
			now.Format("02/01/2006 15:04"),
			uc.Location.String(),
		),
	})

	for _, m := range input.Messages {
		switch m.Role {
		case "user", "assistant", "tool":
			messages = append(messages, m)
		}
	}

	if msg := strings.TrimSpace(input.Message); msg != "" {
		messages = append(messages, llm.Message{Role: "user", Content: msg})
	}
	return messages
}
