// Package publisher chama o handler de publicação por HTTP, quando ele roda
// como serviço separado.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const ServiceKeyHeader = "X-Service-Key"

type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, serviceKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type publishRequest struct {
	UserID string `json:"user_id"`
}

type publishResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Publish chama POST {base}/posts/{id}/publish e só retorna nil em 2xx.
func (c *Client) Publish(ctx context.Context, userID, postID string) error {
	body, err := json.Marshal(publishRequest{UserID: userID})
	if err != nil {
		return fmt.Errorf("erro ao gerar json: %w", err)
	}

	endpoint := fmt.Sprintf("%s/posts/%s/publish", c.baseURL, url.PathEscape(postID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ServiceKeyHeader, c.serviceKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("handler de publicação indisponível: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var out publishResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := out.Error
		if reason == "" {
			reason = out.Message
		}
		if reason == "" {
			reason = strings.TrimSpace(string(raw))
		}
		c.logger.Warn("handler de publicação falhou",
			zap.String("post_id", postID),
			zap.Int("status", resp.StatusCode),
			zap.String("motivo", reason),
		)
		return fmt.Errorf("publicação falhou (status %d): %s", resp.StatusCode, reason)
	}

	c.logger.Debug("handler de publicação respondeu",
		zap.String("post_id", postID),
		zap.String("status", out.Status),
	)
	return nil
}
