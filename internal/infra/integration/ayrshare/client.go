package ayrshare

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("ayrshare não configurada")

type Config struct {
	APIKey     string `yaml:"api_key"`
	ProfileKey string `yaml:"profile_key"`
	BaseURL    string `yaml:"base_url"`
}

type Client struct {
	baseURL    string
	apiKey     string
	profileKey string
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://app.ayrshare.com/api"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		profileKey: cfg.ProfileKey,
		http:       &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Publish envia o post (ou agenda, com ScheduleDate) e devolve o ID da Ayrshare.
func (c *Client) Publish(ctx context.Context, input PostInput) (*PostOutput, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(input.Post) == "" || len(input.Platforms) == 0 {
		return nil, fmt.Errorf("ayrshare: post e plataformas são obrigatórios")
	}

	// 1. Converte DTO -> request da Ayrshare
	payload := postRequest{
		Post:      input.Post,
		Platforms: input.Platforms,
		MediaURLs: input.MediaURLs,
	}
	if input.ScheduleDate != nil {
		payload.ScheduleDate = input.ScheduleDate.UTC().Format(time.RFC3339)
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar json: %w", err)
	}

	// 2. Cria request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/post", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	// 3. Envia
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro request ayrshare: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	// 4. Decodifica
	var response postResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("erro decode ayrshare (status %d): %w", resp.StatusCode, err)
	}

	// 5. Trata erro
	if resp.StatusCode < 200 || resp.StatusCode > 299 || response.Status == "error" {
		c.logger.Warn("ayrshare recusou o post",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("erro ayrshare (status %d): %s", resp.StatusCode, response.errorMessage())
	}

	out := &PostOutput{
		ID:       response.ID,
		Status:   response.Status,
		PostURLs: make(map[string]string, len(response.PostIDs)),
	}
	for _, p := range response.PostIDs {
		if p.PostURL != "" {
			out.PostURLs[p.Platform] = p.PostURL
		}
	}

	c.logger.Info("post enviado para a ayrshare",
		zap.String("ayrshare_id", out.ID),
		zap.Strings("platforms", input.Platforms),
		zap.Bool("agendado", input.ScheduleDate != nil),
	)
	return out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.profileKey != "" {
		req.Header.Set("Profile-Key", c.profileKey)
	}
}

func (r postResponse) errorMessage() string {
	msgs := make([]string, 0, len(r.Errors)+1)
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Platform, e.Message))
	}
	if len(msgs) == 0 && r.Message != "" {
		msgs = append(msgs, r.Message)
	}
	if len(msgs) == 0 {
		return "erro desconhecido"
	}
	return strings.Join(msgs, "; ")
}
