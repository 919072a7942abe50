package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/infra/queue"
)

// ReminderWorker procura lembretes vencidos e publica um ReminderDuePayload
// por lembrete. A entrega (e-mail/WhatsApp) fica com o consumidor da fila.
type ReminderWorker struct {
	notes        entity.NoteRepositoryInterface
	profiles     entity.ProfileRepositoryInterface
	producer     queue.QueueProducerInterface
	tickInterval time.Duration
	batchSize    int
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	retries map[string]retryState
}

// retryState guarda as falhas de um lembrete que ainda não foi enviado.
type retryState struct {
	attempts int
	next     time.Time
}

const (
	// Depois disso o lembrete cujo perfil não carrega é marcado sem envio.
	maxProfileAttempts = 5
	maxBackoff         = time.Hour
)

func NewReminderWorker(
	notes entity.NoteRepositoryInterface,
	profiles entity.ProfileRepositoryInterface,
	producer queue.QueueProducerInterface,
	tick time.Duration,
	logger *zap.Logger,
) *ReminderWorker {
	if tick <= 0 {
		tick = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderWorker{
		notes:        notes,
		profiles:     profiles,
		producer:     producer,
		tickInterval: tick,
		batchSize:    100,
		logger:       logger,
		now:          time.Now,
		retries:      make(map[string]retryState),
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	w.logger.Info("worker de lembretes iniciado", zap.Duration("intervalo", w.tickInterval))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker de lembretes encerrado")
			return
		case <-ticker.C:
			w.Dispatch(ctx)
		}
	}
}

// Dispatch publica os lembretes vencidos (mais antigos primeiro) e devolve
// quantos foram enfileirados. Lembretes que falham esperam com backoff
// exponencial; o lote é ampliado para que eles não ocupem as vagas dos demais.
func (w *ReminderWorker) Dispatch(ctx context.Context) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	due, err := w.notes.FindDueReminders(ctx, now, w.batchSize+len(w.retries))
	if err != nil {
		w.logger.Error("erro ao buscar lembretes vencidos", zap.Error(err))
		return 0
	}
	w.pruneRetries(due)

	sent := 0
	for _, note := range due {
		if ctx.Err() != nil {
			break
		}
		if r, ok := w.retries[note.ID]; ok && now.Before(r.next) {
			continue
		}

		payload := queue.ReminderDuePayload{
			NoteID: note.ID,
			UserID: note.UserID,
			Task:   note.Content,
		}
		if note.DueDate != nil {
			payload.DueDate = *note.DueDate
		}

		profile, err := w.profiles.FindByID(ctx, note.UserID)
		switch {
		case errors.Is(err, entity.ErrProfileNotFound):
			w.logger.Warn("lembrete sem perfil, marcado sem envio", zap.String("note_id", note.ID))
			w.markNotified(ctx, note.ID, now)
			delete(w.retries, note.ID)
			continue
		case err != nil:
			attempts := w.recordFailure(note.ID, now)
			w.logger.Error("erro ao buscar perfil",
				zap.String("user_id", note.UserID),
				zap.String("note_id", note.ID),
				zap.Int("tentativa", attempts),
				zap.Error(err),
			)
			if attempts >= maxProfileAttempts {
				w.logger.Warn("lembrete descartado após falhas no perfil", zap.String("note_id", note.ID))
				w.markNotified(ctx, note.ID, now)
				delete(w.retries, note.ID)
			}
			continue
		}

		payload.Name = profile.FullName
		if profile.Email != nil {
			payload.Email = *profile.Email
		}
		if profile.Phone != nil {
			payload.Phone = *profile.Phone
		}

		if err := w.producer.PublishReminder(ctx, payload); err != nil {
			attempts := w.recordFailure(note.ID, now)
			w.logger.Error("erro ao enfileirar lembrete",
				zap.String("note_id", note.ID),
				zap.Int("tentativa", attempts),
				zap.Error(err),
			)
			continue
		}

		w.markNotified(ctx, note.ID, now)
		delete(w.retries, note.ID)
		sent++
	}

	if sent > 0 {
		w.logger.Info("lembretes enfileirados", zap.Int("total", sent))
	}
	return sent
}

func (w *ReminderWorker) markNotified(ctx context.Context, id string, at time.Time) {
	if err := w.notes.MarkNotified(ctx, id, at); err != nil {
		w.logger.Error("erro ao marcar lembrete como notificado", zap.String("note_id", id), zap.Error(err))
	}
}

// recordFailure agenda a próxima tentativa: tick, 2*tick, 4*tick... até maxBackoff.
func (w *ReminderWorker) recordFailure(id string, now time.Time) int {
	r := w.retries[id]
	r.attempts++

	wait := maxBackoff
	if r.attempts < 32 {
		if d := w.tickInterval << (r.attempts - 1); d > 0 && d < maxBackoff {
			wait = d
		}
	}
	r.next = now.Add(wait)
	w.retries[id] = r
	return r.attempts
}

// pruneRetries esquece lembretes que saíram da fila de vencidos
// (concluídos ou notificados por outro caminho).
func (w *ReminderWorker) pruneRetries(due []*entity.Note) {
	if len(w.retries) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(due))
	for _, n := range due {
		seen[n.ID] = struct{}{}
	}
	for id := range w.retries {
		if _, ok := seen[id]; !ok {
			delete(w.retries, id)
		}
	}
}
