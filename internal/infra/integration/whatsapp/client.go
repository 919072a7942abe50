package whatsapp

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

var ErrNotConfigured = errors.New("whatsapp não configurado")

type Config struct {
	AccessToken      string `yaml:"access_token"`
	PhoneID          string `yaml:"phone_id"`
	BaseURL          string `yaml:"base_url"`
	ReminderTemplate string `yaml:"reminder_template"`
}

type Client struct {
	accessToken string
	phoneID     string
	baseURL     string
	template    string
	httpClient  *http.Client
	logger      *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://graph.facebook.com/v18.0"
	}
	if cfg.ReminderTemplate == "" {
		cfg.ReminderTemplate = "lembrete_concierge"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		accessToken: cfg.AccessToken,
		phoneID:     cfg.PhoneID,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		template:    cfg.ReminderTemplate,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger,
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

// SendReminder envia o template de lembrete: {{1}} nome, {{2}} tarefa, {{3}} data.
func (c *Client) SendReminder(ctx context.Context, phone, name, task, when string) error {
	return c.SendMessage(ctx, SendMessageInput{
		PhoneNumber:  phone,
		TemplateName: c.template,
		Parameters:   []string{name, task, when},
	})
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) error {
	if !c.Configured() {
		c.logger.Warn("WhatsApp: ACCESS_TOKEN ou PHONE_ID não configurados")
		return ErrNotConfigured
	}

	phone := NormalizePhone(input.PhoneNumber)
	if phone == "" {
		return fmt.Errorf("whatsapp: telefone inválido %q", input.PhoneNumber)
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                phone,
		"type":              "template",
		"template": map[string]interface{}{
			"name": input.TemplateName,
			"language": map[string]string{
				"code": "pt_BR",
			},
			"components": []map[string]interface{}{
				{
					"type":       "body",
					"parameters": convertParametersToAPI(input.Parameters),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao serializar payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: erro ao enviar mensagem: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var result SendMessageResponse
	_ = json.Unmarshal(respBody, &result)
	if result.Error != nil {
		return fmt.Errorf("whatsapp: %s (code %d)", result.Error.Message, result.Error.Code)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp api error: %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Info("WhatsApp: mensagem enviada",
		zap.String("template", input.TemplateName),
		zap.String("to", phone),
	)
	return nil
}

// NormalizePhone deixa só dígitos e acrescenta o DDI 55 quando faltar.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) < 10:
		return ""
	case len(digits) <= 11:
		return "55" + digits
	default:
		return digits
	}
}

func convertParametersToAPI(params []string) []map[string]string {
	result := make([]map[string]string, 0, len(params))
	for _, param := range params {
		result = append(result, map[string]string{
			"type": "text",
			"text": param,
		})
	}
	return result
}
