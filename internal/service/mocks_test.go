package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/realtime"
)

// MockChatRepository mocks the ChatRepository interface
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) List(ctx context.Context) ([]domain.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chat), args.Error(1)
}

func (m *MockChatRepository) Create(ctx context.Context, title string) (*domain.Chat, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	args := m.Called(ctx, chatID, content, isBot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockBus mocks realtime.Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Publish(ctx context.Context, ev realtime.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockBus) StartForwarder(ctx context.Context, onEvent func(realtime.Event)) error {
	args := m.Called(ctx, onEvent)
	return args.Error(0)
}

func (m *MockBus) Close() error {
	return m.Called().Error(0)
}

// MockChatListCache mocks ChatListCache
type MockChatListCache struct {
	mock.Mock
}

func (m *MockChatListCache) Get(ctx context.Context) ([]domain.ChatSummary, int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.ChatSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockChatListCache) Set(ctx context.Context, generation int64, chats []domain.ChatSummary) error {
	args := m.Called(ctx, generation, chats)
	return args.Error(0)
}

func (m *MockChatListCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryChatListCache is a generation-checked cache kept in memory
type memoryChatListCache struct {
	mu         sync.Mutex
	chats      []domain.ChatSummary
	generation int64
}

func (c *memoryChatListCache) Get(ctx context.Context) ([]domain.ChatSummary, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chats, c.generation, nil
}

func (c *memoryChatListCache) Set(ctx context.Context, generation int64, chats []domain.ChatSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	c.chats = chats
	return nil
}

func (c *memoryChatListCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.chats = nil
	return nil
}
