package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

var ErrNotConfigured = errors.New("smtp não configurado")

var reminderTemplate = template.Must(template.New("reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <p>Olá, {{.Name}}!</p>
  <p>Você pediu para ser lembrado:</p>
  <p><strong>{{.Task}}</strong></p>
  {{if .Lead}}<p>Lead: {{.Lead}}</p>{{end}}
  <p>Quando: {{.When}}</p>
  <p style="color: #888;">Nexus Concierge</p>
</body>
</html>`))

func NewEmailSender(cfg Config) *EmailSender {
	from := cfg.From
	if from == "" {
		from = "nao-responda@nexus.app"
	}
	return &EmailSender{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		From:     from,
	}
}

func (s *EmailSender) Configured() bool {
	return s.Host != "" && s.Port > 0
}

// BuildReminder monta a mensagem sem enviar.
func (s *EmailSender) BuildReminder(to string, data ReminderEmailData) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lembrete: %s", data.Task))
	m.SetBody("text/html", body.String())
	return m, nil
}

// SendReminder envia o e-mail de lembrete. gomail não aceita context;
// o cancelamento só é checado antes de discar.
func (s *EmailSender) SendReminder(ctx context.Context, to string, data ReminderEmailData) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.BuildReminder(to, data)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}
