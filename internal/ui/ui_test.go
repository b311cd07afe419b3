package ui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Rrens/crewchat/internal/domain"
	"github.com/Rrens/crewchat/internal/session"
	"github.com/Rrens/crewchat/internal/ui"
)

func sampleSnapshot() session.Snapshot {
	trip := domain.ChatSummary{ID: uuid.New(), Title: "Trip"}
	work := domain.ChatSummary{ID: uuid.New(), Title: "Work"}

	return session.Snapshot{
		Chats:      []domain.ChatSummary{trip, work},
		SelectedID: trip.ID,
		Entries: []session.Entry{
			{ID: "m1", Message: domain.Message{ChatID: trip.ID, Content: "where to?"}},
			{ID: "m2", Message: domain.Message{ChatID: trip.ID, Content: "the coast", IsBot: true}},
			{ID: "temp-1-1", Pending: true, Message: domain.Message{ChatID: trip.ID, Content: "sounds good"}},
		},
		ReplyPending: true,
	}
}

func TestRender(t *testing.T) {
	out := ui.Render(sampleSnapshot(), 60)

	for _, s := range []string{"crewchat", "Chats", "> Trip", "  Work", "where to?", "the coast", "sounds good (sending)", ui.StatusReplying} {
		assert.Contains(t, out, s)
	}
	assert.Less(t, strings.Index(out, "where to?"), strings.Index(out, "the coast"))
	assert.Less(t, strings.Index(out, "the coast"), strings.Index(out, "sounds good"))
}

func TestRender_IsPure(t *testing.T) {
	snap := sampleSnapshot()
	assert.Equal(t, ui.Render(snap, 50), ui.Render(snap, 50))
}

func TestStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		snap session.Snapshot
		want string
	}{
		{"no selection", session.Snapshot{}, ui.StatusNoSelection},
		{"loading", session.Snapshot{SelectedID: id, Loading: true}, ui.StatusLoading},
		{"empty", session.Snapshot{SelectedID: id}, ui.StatusEmpty},
		{"replying", session.Snapshot{SelectedID: id, ReplyPending: true}, ui.StatusReplying},
		{"ready", session.Snapshot{SelectedID: id, Entries: []session.Entry{{ID: "x"}}}, ui.StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ui.Status(tt.snap))
		})
	}
}

func TestRender_NoChats(t *testing.T) {
	out := ui.Render(session.Snapshot{}, 5)

	assert.Contains(t, out, "(none)")
	assert.Contains(t, out, ui.StatusNoSelection)
}

func TestToaster_Expires(t *testing.T) {
	toaster := ui.NewToaster(30 * time.Millisecond)
	defer toaster.Close()

	toaster.Notify(session.Notification{Level: session.LevelError, Text: session.MsgSendFailed})

	active := toaster.Active()
	if assert.Len(t, active, 1) {
		assert.Equal(t, session.MsgSendFailed, active[0].Text)
	}
	assert.Contains(t, ui.RenderToasts(active, 40), session.MsgSendFailed)

	assert.Eventually(t, func() bool { return len(toaster.Active()) == 0 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, ui.RenderToasts(toaster.Active(), 40))
}

func TestToaster_DefaultTTL(t *testing.T) {
	toaster := ui.NewToaster(0)
	defer toaster.Close()

	toaster.Notify(session.Notification{Text: session.MsgChatCreated})
	time.Sleep(50 * time.Millisecond)

	assert.Len(t, toaster.Active(), 1)
	select {
	case <-toaster.Changes():
	default:
		t.Fatal("expected change signal")
	}
}
