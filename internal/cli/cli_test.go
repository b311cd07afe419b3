package cli_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/crewchat/internal/cli"
	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/session"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want cli.Command
	}{
		{"hello there", cli.Command{Kind: cli.KindSend, Arg: "hello there"}},
		{"  ", cli.Command{Kind: cli.KindSend, Arg: ""}},
		{"/new Trip plans", cli.Command{Kind: cli.KindNew, Arg: "Trip plans"}},
		{"/select 2", cli.Command{Kind: cli.KindSelect, Arg: "2"}},
		{"/delete", cli.Command{Kind: cli.KindDelete}},
		{"/CHATS", cli.Command{Kind: cli.KindChats}},
		{"/exit", cli.Command{Kind: cli.KindQuit}},
		{"/dance now", cli.Command{Kind: cli.KindUnknown, Arg: "/dance"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.ParseLine(tt.line))
		})
	}
}

func TestResolveChat(t *testing.T) {
	a := domain.ChatSummary{ID: uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001"), Title: "A"}
	b := domain.ChatSummary{ID: uuid.MustParse("aaaabbbb-0000-0000-0000-000000000002"), Title: "B"}
	chats := []domain.ChatSummary{a, b}

	id, err := cli.ResolveChat(chats, "2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	id, err = cli.ResolveChat(chats, a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)

	id, err = cli.ResolveChat(chats, "aaaabb")
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	_, err = cli.ResolveChat(chats, "aaaa")
	assert.ErrorIs(t, err, cli.ErrUnknownChat)

	_, err = cli.ResolveChat(chats, "3")
	assert.ErrorIs(t, err, cli.ErrUnknownChat)

	_, err = cli.ResolveChat(chats, "")
	assert.ErrorIs(t, err, domain.ErrChatIDRequired)
}

func TestConfirmer_AssumeYes(t *testing.T) {
	ok, err := cli.Confirmer{AssumeYes: true}.Confirm(context.Background(), "sure?")
	require.NoError(t, err)
	assert.True(t, ok)
}

type memoryBackend struct {
	mu    sync.Mutex
	chats []domain.Chat
	sent  []string
}

func (b *memoryBackend) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.ChatSummary, 0, len(b.chats))
	for _, c := range b.chats {
		out = append(out, c.Summary())
	}
	return out, nil
}

func (b *memoryBackend) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := domain.Chat{ID: uuid.New(), Title: title, CreatedTime: time.Now()}
	b.chats = append(b.chats, c)
	return &c, nil
}

func (b *memoryBackend) DeleteChat(ctx context.Context, id uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	chats := b.chats[:0]
	for _, c := range b.chats {
		if c.ID != id {
			chats = append(chats, c)
		}
	}
	b.chats = chats
	return nil
}

func (b *memoryBackend) CreateMessage(ctx context.Context, chatID uuid.UUID, content string, isBot bool) (*domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, content)
	return &domain.Message{ID: uuid.New(), ChatID: chatID, Content: content, IsBot: isBot, CreatedTime: time.Now()}, nil
}

func (b *memoryBackend) sentCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

func TestShell_Handle(t *testing.T) {
	backend := &memoryBackend{}
	sess := session.New(session.Options{Backend: backend, Confirmer: cli.Confirmer{AssumeYes: true}})
	defer sess.Close()

	var out bytes.Buffer
	shell := cli.NewShell(cli.ShellOptions{Session: sess, Output: &out})
	ctx := context.Background()

	assert.False(t, shell.Handle(ctx, cli.ParseLine("/new Trip")))
	snap := sess.Snapshot()
	require.Len(t, snap.Chats, 1)
	assert.Equal(t, snap.Chats[0].ID, snap.SelectedID)

	assert.False(t, shell.Handle(ctx, cli.ParseLine("where to?")))
	// user message plus the fallback reply
	assert.Eventually(t, func() bool { return backend.sentCount() == 2 }, time.Second, 5*time.Millisecond)

	assert.False(t, shell.Handle(ctx, cli.ParseLine("/select 9")))
	assert.Contains(t, out.String(), cli.ErrUnknownChat.Error())

	assert.False(t, shell.Handle(ctx, cli.ParseLine("/delete")))
	assert.Empty(t, sess.Snapshot().Chats)
	assert.False(t, sess.Snapshot().HasSelection())

	assert.True(t, shell.Handle(ctx, cli.ParseLine("/quit")))
}

// scriptedInput replays lines and records the prompt shown for each
type scriptedInput struct {
	mu      sync.Mutex
	lines   []string
	prompt  string
	prompts []string
}

func (in *scriptedInput) Readline() (string, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.prompts = append(in.prompts, in.prompt)
	if len(in.lines) == 0 {
		return "", io.EOF
	}
	line := in.lines[0]
	in.lines = in.lines[1:]
	return line, nil
}

func (in *scriptedInput) SetPrompt(prompt string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.prompt = prompt
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func TestIsYes(t *testing.T) {
	for _, answer := range []string{"y", "Y", " yes ", "YES"} {
		assert.True(t, cli.IsYes(answer), answer)
	}
	for _, answer := range []string{"", "n", "no", "yep", "maybe"} {
		assert.False(t, cli.IsYes(answer), answer)
	}
}

func TestLineConfirmer_Detached(t *testing.T) {
	_, err := (&cli.LineConfirmer{}).Confirm(context.Background(), "sure?")
	assert.Error(t, err)
}

func TestShell_DeleteConfirmsFromShellInput(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		deleted bool
	}{
		{"yes", "y", true},
		{"no", "n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &memoryBackend{}
			confirmer := &cli.LineConfirmer{}
			sess := session.New(session.Options{Backend: backend, Confirmer: confirmer})
			defer sess.Close()

			in := &scriptedInput{lines: []string{"/new Trip", "/delete", tt.answer, "/chats"}}
			shell := cli.NewShell(cli.ShellOptions{
				Session:   sess,
				Confirmer: confirmer,
				Input:     in,
				Output:    &lockedBuffer{},
			})

			require.NoError(t, shell.Run(context.Background()))

			// the answer is consumed by the confirmation, not run as a message
			assert.Zero(t, backend.sentCount())
			if tt.deleted {
				assert.Empty(t, sess.Snapshot().Chats)
			} else {
				assert.Len(t, sess.Snapshot().Chats, 1)
			}

			in.mu.Lock()
			defer in.mu.Unlock()
			require.Len(t, in.prompts, 5)
			assert.Contains(t, in.prompts[2], "[y/N]")
			assert.Equal(t, "> ", in.prompts[3])

			// detached once the shell exits
			_, err := confirmer.Confirm(context.Background(), "again?")
			assert.Error(t, err)
		})
	}
}
