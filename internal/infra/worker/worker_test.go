package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/infra/queue"
)

// ============ MOCKS ============

type MockNoteRepository struct{ mock.Mock }

func (m *MockNoteRepository) Create(ctx context.Context, note *entity.Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNoteRepository) FindDueReminders(ctx context.Context, now time.Time, limit int) ([]*entity.Note, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Note), args.Error(1)
}

func (m *MockNoteRepository) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockProfileRepository struct{ mock.Mock }

func (m *MockProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

type MockProducer struct{ mock.Mock }

func (m *MockProducer) PublishReminder(ctx context.Context, payload queue.ReminderDuePayload) error {
	return m.Called(ctx, payload).Error(0)
}

type MockPostRepository struct {
	mock.Mock
	entity.SocialPostRepositoryInterface
}

func (m *MockPostRepository) FailStaleScheduling(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

var now = time.Date(2026, 10, 20, 13, 0, 0, 0, time.UTC)

func reminder(id, user string) *entity.Note {
	due := now.Add(-time.Minute)
	return &entity.Note{ID: id, UserID: user, Type: entity.NoteTypeReminder, Content: "ligar", DueDate: &due}
}

// ============ REMINDER WORKER ============

// TestDispatchPublishesAndMarks - Lembrete vencido vira mensagem e é marcado
func TestDispatchPublishesAndMarks(t *testing.T) {
	notes := new(MockNoteRepository)
	profiles := new(MockProfileRepository)
	producer := new(MockProducer)
	email := "ana@example.com"

	notes.On("FindDueReminders", mock.Anything, now, 100).Return([]*entity.Note{reminder("n1", "u1")}, nil)
	profiles.On("FindByID", mock.Anything, "u1").Return(&entity.Profile{ID: "u1", FullName: "Ana", Email: &email}, nil)
	producer.On("PublishReminder", mock.Anything, mock.MatchedBy(func(p queue.ReminderDuePayload) bool {
		return p.NoteID == "n1" && p.Email == email && p.Phone == "" && p.Task == "ligar" && p.Name == "Ana"
	})).Return(nil)
	notes.On("MarkNotified", mock.Anything, "n1", now).Return(nil)

	w := NewReminderWorker(notes, profiles, producer, time.Minute, nil)
	w.now = func() time.Time { return now }

	assert.Equal(t, 1, w.Dispatch(context.Background()))
	notes.AssertExpectations(t)
	producer.AssertExpectations(t)
}

// TestDispatchPublishFailureRetries - Erro na fila não marca o lembrete
func TestDispatchPublishFailureRetries(t *testing.T) {
	notes := new(MockNoteRepository)
	profiles := new(MockProfileRepository)
	producer := new(MockProducer)

	notes.On("FindDueReminders", mock.Anything, now, 100).Return([]*entity.Note{reminder("n1", "u1")}, nil)
	profiles.On("FindByID", mock.Anything, "u1").Return(&entity.Profile{ID: "u1"}, nil)
	producer.On("PublishReminder", mock.Anything, mock.Anything).Return(errors.New("rabbit fora"))

	w := NewReminderWorker(notes, profiles, producer, time.Minute, nil)
	w.now = func() time.Time { return now }

	assert.Equal(t, 0, w.Dispatch(context.Background()))
	notes.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}

// TestDispatchWithoutProfile - Sem perfil marca sem publicar
func TestDispatchWithoutProfile(t *testing.T) {
	notes := new(MockNoteRepository)
	profiles := new(MockProfileRepository)
	producer := new(MockProducer)

	notes.On("FindDueReminders", mock.Anything, now, 100).Return([]*entity.Note{reminder("n1", "ghost")}, nil)
	profiles.On("FindByID", mock.Anything, "ghost").Return(nil, entity.ErrProfileNotFound)
	notes.On("MarkNotified", mock.Anything, "n1", now).Return(nil)

	w := NewReminderWorker(notes, profiles, producer, time.Minute, nil)
	w.now = func() time.Time { return now }

	assert.Equal(t, 0, w.Dispatch(context.Background()))
	producer.AssertNotCalled(t, "PublishReminder", mock.Anything, mock.Anything)
	notes.AssertExpectations(t)
}

// TestDispatchProfileErrorBackoff - Lembrete com perfil falhando espera e não ocupa o lote
func TestDispatchProfileErrorBackoff(t *testing.T) {
	notes := new(MockNoteRepository)
	profiles := new(MockProfileRepository)
	producer := new(MockProducer)

	due := []*entity.Note{reminder("n1", "u1"), reminder("n2", "u2")}
	notes.On("FindDueReminders", mock.Anything, mock.Anything, 100).Return(due, nil).Once()
	// a segunda busca amplia o lote pelo lembrete em espera
	notes.On("FindDueReminders", mock.Anything, mock.Anything, 101).Return(due[:1], nil).Once()
	profiles.On("FindByID", mock.Anything, "u1").Return(nil, errors.New("timeout")).Once()
	profiles.On("FindByID", mock.Anything, "u2").Return(&entity.Profile{ID: "u2"}, nil)
	producer.On("PublishReminder", mock.Anything, mock.Anything).Return(nil)
	notes.On("MarkNotified", mock.Anything, "n2", mock.Anything).Return(nil)

	w := NewReminderWorker(notes, profiles, producer, time.Minute, nil)
	clock := now
	w.now = func() time.Time { return clock }

	assert.Equal(t, 1, w.Dispatch(context.Background()))

	clock = now.Add(30 * time.Second)
	assert.Equal(t, 0, w.Dispatch(context.Background()))

	notes.AssertExpectations(t)
	profiles.AssertNumberOfCalls(t, "FindByID", 2)
	notes.AssertNotCalled(t, "MarkNotified", mock.Anything, "n1", mock.Anything)
}

// TestDispatchProfileErrorGivesUp - Após as tentativas o lembrete é marcado sem envio
func TestDispatchProfileErrorGivesUp(t *testing.T) {
	notes := new(MockNoteRepository)
	profiles := new(MockProfileRepository)
	producer := new(MockProducer)

	notes.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).Return([]*entity.Note{reminder("n1", "u1")}, nil)
	profiles.On("FindByID", mock.Anything, "u1").Return(nil, errors.New("conexão recusada"))
	notes.On("MarkNotified", mock.Anything, "n1", mock.Anything).Return(nil).Once()

	w := NewReminderWorker(notes, profiles, producer, time.Minute, nil)
	clock := now
	w.now = func() time.Time { return clock }

	for i := 1; i <= maxProfileAttempts; i++ {
		if i < maxProfileAttempts {
			notes.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
		}
		assert.Equal(t, 0, w.Dispatch(context.Background()))
		clock = clock.Add(maxBackoff)
	}

	profiles.AssertNumberOfCalls(t, "FindByID", maxProfileAttempts)
	notes.AssertExpectations(t)
	producer.AssertNotCalled(t, "PublishReminder", mock.Anything, mock.Anything)
	assert.Empty(t, w.retries)
}

// TestRecordFailureBackoff - Espera dobra a cada falha até o teto
func TestRecordFailureBackoff(t *testing.T) {
	w := NewReminderWorker(nil, nil, nil, time.Minute, nil)

	var waits []time.Duration
	for i := 0; i < 8; i++ {
		w.recordFailure("n1", now)
		waits = append(waits, w.retries["n1"].next.Sub(now))
	}
	assert.Equal(t, []time.Duration{
		time.Minute, 2 * time.Minute, 4 * time.Minute, 8 * time.Minute,
		16 * time.Minute, 32 * time.Minute, time.Hour, time.Hour,
	}, waits)
}

// TestReminderWorkerStops - Start encerra com o ctx sem vazar goroutines
func TestReminderWorkerStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	notes := new(MockNoteRepository)
	notes.On("FindDueReminders", mock.Anything, mock.Anything, mock.Anything).Return([]*entity.Note{}, nil)

	w := NewReminderWorker(notes, new(MockProfileRepository), new(MockProducer), 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
}

// ============ SCHEDULING SWEEPER ============

// TestSweepUsesWindow - Corte = agora - janela
func TestSweepUsesWindow(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FailStaleScheduling", mock.Anything, now.Add(-15*time.Minute)).Return(int64(2), nil)

	s := NewSchedulingSweeper(posts, 15*time.Minute, time.Minute, nil)
	s.now = func() time.Time { return now }

	assert.Equal(t, int64(2), s.Sweep(context.Background()))
	posts.AssertExpectations(t)
}

// TestSweepError - Erro do banco é só logado
func TestSweepError(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("FailStaleScheduling", mock.Anything, mock.Anything).Return(int64(0), errors.New("db fora"))

	s := NewSchedulingSweeper(posts, 0, 0, nil)
	assert.Equal(t, int64(0), s.Sweep(context.Background()))
}

// TestSweeperStops - Start encerra com o ctx
func TestSweeperStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	posts := new(MockPostRepository)
	posts.On("FailStaleScheduling", mock.Anything, mock.Anything).Return(int64(0), nil)

	s := NewSchedulingSweeper(posts, time.Minute, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done
}
