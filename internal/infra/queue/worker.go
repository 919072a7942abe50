package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/nexus-concierge/internal/infra/mail"
)

// EmailNotifier e WhatsAppNotifier são os canais de entrega do lembrete.
type EmailNotifier interface {
	SendReminder(ctx context.Context, to string, data mail.ReminderEmailData) error
}

type WhatsAppNotifier interface {
	SendReminder(ctx context.Context, phone, name, task, when string) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	Email    EmailNotifier
	WhatsApp WhatsAppNotifier
	Location *time.Location
	Logger   *zap.Logger
}

func NewWorker(ch consumer, email EmailNotifier, whatsapp WhatsAppNotifier, loc *time.Location, logger *zap.Logger) *Worker {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		Channel:  ch,
		Email:    email,
		WhatsApp: whatsapp,
		Location: loc,
		Logger:   logger,
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.Info("consumidor de lembretes aguardando", zap.String("fila", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("consumidor de lembretes encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal do RabbitMQ fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var payload ReminderDuePayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		w.Logger.Error("lembrete com JSON inválido", zap.Error(err))
		// mensagem malformada vai direto para a DLQ
		_ = d.Nack(false, false)
		return
	}

	if err := w.processMessage(ctx, payload); err != nil {
		w.Logger.Error("falha ao entregar lembrete",
			zap.String("note_id", payload.NoteID),
			zap.Error(err),
		)
		_ = d.Nack(false, false)
		return
	}

	w.Logger.Info("lembrete entregue", zap.String("note_id", payload.NoteID), zap.String("user_id", payload.UserID))
	_ = d.Ack(false)
}

// processMessage entrega por e-mail e WhatsApp em paralelo; qualquer falha
// faz a mensagem ir para a DLQ.
func (w *Worker) processMessage(ctx context.Context, payload ReminderDuePayload) error {
	when := payload.DueDate.In(w.Location).Format("02/01/2006 às 15:04")

	g, gctx := errgroup.WithContext(ctx)

	if payload.Email != "" && w.Email != nil {
		g.Go(func() error {
			return w.Email.SendReminder(gctx, payload.Email, mail.ReminderEmailData{
				Name: payload.Name,
				Task: payload.Task,
				When: when,
			})
		})
	}

	if payload.Phone != "" && w.WhatsApp != nil {
		g.Go(func() error {
			return w.WhatsApp.SendReminder(gctx, payload.Phone, payload.Name, payload.Task, when)
		})
	}

	return g.Wait()
}
