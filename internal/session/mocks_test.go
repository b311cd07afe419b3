package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/crewchat/internal/client"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/llm"
)

// MockBackend mocks Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChatSummary), args.Error(1)
}

func (m *MockBackend) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockBackend) DeleteChat(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBackend) CreateMessage(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	args := m.Called(ctx, chatID, content, isBot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

// MockInference mocks Inference
type MockInference struct {
	mock.Mock
}

func (m *MockInference) Reply(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

type confirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, note.Text)
}

func (n *recordingNotifier) Texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.texts...)
}

type watch struct {
	chatID uuid.UUID
	ctx    context.Context
	emit   func(client.Update)
}

// fakeFeed records Watch calls and lets tests push updates by hand
type fakeFeed struct {
	mu      sync.Mutex
	watches []*watch
}

func (f *fakeFeed) Watch(ctx context.Context, chatID uuid.UUID, emit func(client.Update)) {
	f.mu.Lock()
	f.watches = append(f.watches, &watch{chatID: chatID, ctx: ctx, emit: emit})
	f.mu.Unlock()
	<-ctx.Done()
}

// nth waits until the n-th (1-based) Watch call has started
func (f *fakeFeed) nth(t *testing.T, n int) *watch {
	t.Helper()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.watches) >= n
	}, time.Second, 5*time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watches[n-1]
}
