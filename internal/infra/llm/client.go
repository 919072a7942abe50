// Package llm fala com o gateway de IA compatível com chat-completions
// (com e sem streaming, com function calling).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		// sem Timeout no http.Client: o streaming vive o tempo da requisição
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) Model() string {
	return c.model
}

// Complete faz uma chamada sem streaming.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	req.Stream = false
	req.Model = c.modelFor(req)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler resposta do gateway: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("falha ao decodificar resposta do gateway: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("erro do gateway: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("gateway não retornou nenhuma escolha")
	}

	choice := parsed.Choices[0]
	c.logger.Debug("completion concluída",
		zap.String("model", req.Model),
		zap.Duration("duracao", time.Since(startTime)),
		zap.Int("tool_calls", len(choice.Message.ToolCalls)),
	)

	return &Completion{
		Content:      strings.TrimSpace(choice.Message.Content),
		ToolCalls:    choice.Message.ToolCalls,
		FinishReason: choice.FinishReason,
	}, nil
}

// Stream abre uma chamada com streaming. Erros de configuração e status
// não-2xx voltam aqui, antes de qualquer evento.
func (c *Client) Stream(ctx context.Context, req ChatRequest) (*Stream, error) {
	req.Stream = true
	req.Model = c.modelFor(req)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("streaming iniciado", zap.String("model", req.Model))
	return NewStream(resp.Body), nil
}

func (c *Client) modelFor(req ChatRequest) string {
	if req.Model == "" {
		return c.model
	}
	return req.Model
}

func (c *Client) do(ctx context.Context, req ChatRequest) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("falha ao serializar requisição: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("falha ao criar requisição: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("requisição ao gateway falhou: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("gateway de IA retornou erro",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}
