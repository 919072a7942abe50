package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/infra/integration/whatsapp"
)

type WhatsAppSender struct {
	client *whatsapp.Client
	logger *zap.Logger
}

func NewWhatsAppSender(client *whatsapp.Client, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSender{
		client: client,
		logger: logger,
	}
}

// SendReminder ignora destinatários sem telefone; erros de envio voltam
// para o consumidor decidir sobre a DLQ.
func (s *WhatsAppSender) SendReminder(ctx context.Context, phone, name, task, when string) error {
	if phone == "" || task == "" {
		s.logger.Warn("WhatsApp: dados incompletos para envio",
			zap.String("phone", phone),
			zap.String("task", task),
		)
		return nil
	}
	if !s.client.Configured() {
		s.logger.Debug("WhatsApp desabilitado, lembrete não enviado")
		return nil
	}

	if name == "" {
		name = "tudo bem"
	}
	return s.client.SendReminder(ctx, phone, name, task, when)
}
