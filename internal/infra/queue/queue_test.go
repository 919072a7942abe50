package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xavierca1/nexus-concierge/internal/infra/mail"
)

// ============ FAKES ============

type fakeAck struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	return nil
}

func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
}

func (c *fakeConsumer) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return c.msgs, nil
}

type MockEmail struct{ mock.Mock }

func (m *MockEmail) SendReminder(ctx context.Context, to string, data mail.ReminderEmailData) error {
	return m.Called(ctx, to, data).Error(0)
}

type MockWhatsApp struct{ mock.Mock }

func (m *MockWhatsApp) SendReminder(ctx context.Context, phone, name, task, when string) error {
	return m.Called(ctx, phone, name, task, when).Error(0)
}

var brt = time.FixedZone("BRT", -3*3600)

func reminderPayload() ReminderDuePayload {
	return ReminderDuePayload{
		NoteID:  "note-1",
		UserID:  "u1",
		Task:    "ligar",
		DueDate: time.Date(2026, 10, 20, 13, 0, 0, 0, time.UTC),
		Name:    "Ana",
		Email:   "ana@example.com",
		Phone:   "11999999999",
	}
}

func delivery(t *testing.T, ack *fakeAck, v any) amqp.Delivery {
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

// ============ TESTES DO PRODUCER ============

// TestPublishReminder - Mensagem persistente na exchange de lembretes
func TestPublishReminder(t *testing.T) {
	pub := &fakePublisher{}
	p := NewProducer(pub)

	require.NoError(t, p.PublishReminder(context.Background(), reminderPayload()))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "note-1", pub.msg.MessageId)

	var got ReminderDuePayload
	require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
	assert.Equal(t, "ligar", got.Task)
	assert.True(t, got.DueDate.Equal(reminderPayload().DueDate))
}

// TestPublishReminderError - Erro do canal é propagado
func TestPublishReminderError(t *testing.T) {
	p := NewProducer(&fakePublisher{err: amqp.ErrClosed})
	err := p.PublishReminder(context.Background(), reminderPayload())
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

// ============ TESTES DO CONSUMIDOR ============

// TestHandleDeliversBothChannels - E-mail e WhatsApp recebem a data local
func TestHandleDeliversBothChannels(t *testing.T) {
	email := new(MockEmail)
	wa := new(MockWhatsApp)
	email.On("SendReminder", mock.Anything, "ana@example.com", mail.ReminderEmailData{
		Name: "Ana", Task: "ligar", When: "20/10/2026 às 10:00",
	}).Return(nil)
	wa.On("SendReminder", mock.Anything, "11999999999", "Ana", "ligar", "20/10/2026 às 10:00").Return(nil)

	w := NewWorker(nil, email, wa, brt, nil)
	ack := &fakeAck{}
	w.handle(context.Background(), delivery(t, ack, reminderPayload()))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	email.AssertExpectations(t)
	wa.AssertExpectations(t)
}

// TestHandleFailureGoesToDLQ - Falha em um canal faz Nack sem requeue
func TestHandleFailureGoesToDLQ(t *testing.T) {
	email := new(MockEmail)
	wa := new(MockWhatsApp)
	email.On("SendReminder", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	wa.On("SendReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("graph api fora"))

	w := NewWorker(nil, email, wa, brt, nil)
	ack := &fakeAck{}
	w.handle(context.Background(), delivery(t, ack, reminderPayload()))

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

// TestHandleMalformed - JSON inválido vai para a DLQ sem tentar entregar
func TestHandleMalformed(t *testing.T) {
	email := new(MockEmail)
	w := NewWorker(nil, email, nil, brt, nil)
	ack := &fakeAck{}

	w.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{quebrado")})

	assert.Equal(t, 1, ack.nacked)
	email.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything, mock.Anything)
}

// TestHandleSkipsMissingContact - Sem e-mail só o WhatsApp é usado
func TestHandleSkipsMissingContact(t *testing.T) {
	email := new(MockEmail)
	wa := new(MockWhatsApp)
	wa.On("SendReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := reminderPayload()
	p.Email = ""

	w := NewWorker(nil, email, wa, brt, nil)
	ack := &fakeAck{}
	w.handle(context.Background(), delivery(t, ack, p))

	assert.Equal(t, 1, ack.acked)
	email.AssertNotCalled(t, "SendReminder", mock.Anything, mock.Anything, mock.Anything)
}

// TestStartStopsOnCancel - Start retorna quando o ctx é cancelado
func TestStartStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	wa := new(MockWhatsApp)
	wa.On("SendReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	p := reminderPayload()
	p.Email = ""
	ack := &fakeAck{}
	c.msgs <- delivery(t, ack, p)

	w := NewWorker(c, nil, wa, brt, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx, QueueName) }()

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acked == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

// TestStartClosedChannel - Canal fechado encerra com erro
func TestStartClosedChannel(t *testing.T) {
	c := &fakeConsumer{msgs: make(chan amqp.Delivery)}
	close(c.msgs)

	w := NewWorker(c, nil, nil, brt, nil)
	assert.Error(t, w.Start(context.Background(), QueueName))
}
