package session

import (
	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// Entry is one line of the thread: either a confirmed message or a pending
// optimistic one identified by a temporary id.
type Entry struct {
	ID      string
	Pending bool
	Message domain.Message
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	Chats        []domain.ChatSummary
	SelectedID   uuid.UUID
	Entries      []Entry
	Loading      bool
	ReplyPending bool
}

// HasSelection reports whether a chat is selected
func (s Snapshot) HasSelection() bool {
	return s.SelectedID != uuid.Nil
}

// SelectedTitle returns the title of the selected chat, if listed
func (s Snapshot) SelectedTitle() string {
	for _, c := range s.Chats {
		if c.ID == s.SelectedID {
			return c.Title
		}
	}
	return ""
}

// Snapshot copies the current state. Confirmed messages come first in
// creation order, then pending entries in send order.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.confirmed)+len(s.pending))
	for _, m := range s.confirmed {
		entries = append(entries, Entry{ID: m.ID.String(), Message: m})
	}
	entries = append(entries, s.pending...)

	return Snapshot{
		Chats:        append([]domain.ChatSummary{}, s.chats...),
		SelectedID:   s.selected,
		Entries:      entries,
		Loading:      s.loading,
		ReplyPending: s.replyPending,
	}
}
