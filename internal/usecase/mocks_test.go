package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/nexus-concierge/internal/entity"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *MockLeadRepository) FindByNameFragment(ctx context.Context, userID, fragment string) (*entity.Lead, error) {
	args := m.Called(ctx, userID, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) AppendNote(ctx context.Context, leadID, line string) error {
	return m.Called(ctx, leadID, line).Error(0)
}

func (m *MockLeadRepository) SetReminder(ctx context.Context, leadID string, at time.Time, line string) error {
	return m.Called(ctx, leadID, at, line).Error(0)
}

// MockNoteRepository
type MockNoteRepository struct {
	mock.Mock
}

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

// MockPostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) FindByID(ctx context.Context, userID, id string) (*entity.SocialPost, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SocialPost), args.Error(1)
}

func (m *MockPostRepository) FindSchedulable(ctx context.Context, filter entity.PostFilter) (*entity.SocialPost, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SocialPost), args.Error(1)
}

func (m *MockPostRepository) BeginScheduling(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockPostRepository) RevertScheduling(ctx context.Context, id, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockPostRepository) MarkScheduled(ctx context.Context, id, platformPostID string) error {
	return m.Called(ctx, id, platformPostID).Error(0)
}

func (m *MockPostRepository) MarkPublished(ctx context.Context, id, platformPostID string, at time.Time) error {
	return m.Called(ctx, id, platformPostID, at).Error(0)
}

func (m *MockPostRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockPostRepository) FailStaleScheduling(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) UpsertContent(ctx context.Context, userID, name string, content json.RawMessage) (bool, error) {
	args := m.Called(ctx, userID, name, content)
	return args.Bool(0), args.Error(1)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, userID, postID string) error {
	return m.Called(ctx, userID, postID).Error(0)
}

// MockSocialGateway
type MockSocialGateway struct {
	mock.Mock
}

func (m *MockSocialGateway) Publish(ctx context.Context, input ayrshare.PostInput) (*ayrshare.PostOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ayrshare.PostOutput), args.Error(1)
}

// MockChatModel
type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) Complete(ctx context.Context, req llm.ChatRequest) (*llm.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

func (m *MockChatModel) Stream(ctx context.Context, req llm.ChatRequest) (*llm.Stream, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Stream), args.Error(1)
}
