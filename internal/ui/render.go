package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rrens/crewchat/internal/session"
)

const (
	minWidth   = 20
	labelWidth = 5
)

// Status line texts
const (
	StatusNoSelection = "Select or create a chat"
	StatusLoading     = "Loading messages..."
	StatusEmpty       = "No messages yet"
	StatusReplying    = "Bot is typing..."
	StatusReady       = "Type a message"
)

// Render draws the chat list, the selected thread and the composer status.
// It depends only on its arguments.
func Render(snap session.Snapshot, width int) string {
	if width < minWidth {
		width = minWidth
	}

	var b strings.Builder
	b.WriteString(titleStyle.Width(width).Render("crewchat"))
	b.WriteString("\n")

	b.WriteString(renderChats(snap, width))
	b.WriteString(divider(width))

	if snap.HasSelection() {
		title := snap.SelectedTitle()
		if title == "" {
			title = snap.SelectedID.String()
		}
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		b.WriteString(renderThread(snap, width))
	}

	b.WriteString(divider(width))
	b.WriteString(statusStyle.Render(Status(snap)))
	return b.String()
}

// Status returns the composer status line for snap
func Status(snap session.Snapshot) string {
	switch {
	case !snap.HasSelection():
		return StatusNoSelection
	case snap.Loading:
		return StatusLoading
	case snap.ReplyPending:
		return StatusReplying
	case len(snap.Entries) == 0:
		return StatusEmpty
	}
	return StatusReady
}

func renderChats(snap session.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Chats"))
	b.WriteString("\n")

	if len(snap.Chats) == 0 {
		b.WriteString(statusStyle.Render("  (none)"))
		b.WriteString("\n")
		return b.String()
	}

	for _, c := range snap.Chats {
		line := lipgloss.NewStyle().MaxWidth(width - 2).Render(c.Title)
		if c.ID == snap.SelectedID {
			b.WriteString(selectedChatStyle.Render("> " + line))
		} else {
			b.WriteString(chatStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderThread(snap session.Snapshot, width int) string {
	body := lipgloss.NewStyle().Width(width - labelWidth - 1)

	var b strings.Builder
	for _, e := range snap.Entries {
		label := userLabelStyle.Width(labelWidth).Render("you")
		if e.Message.IsBot {
			label = botLabelStyle.Width(labelWidth).Render("bot")
		}

		text := e.Message.Content
		if e.Pending {
			text = pendingStyle.Render(text + " (sending)")
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, " ", body.Render(text)))
		b.WriteString("\n")
	}
	return b.String()
}

func divider(width int) string {
	return dividerStyle.Render(strings.Repeat("─", width)) + "\n"
}

// RenderToasts draws the active notifications
func RenderToasts(toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	if width < minWidth {
		width = minWidth
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := infoToastStyle
		if t.Level == session.LevelError {
			style = errorToastStyle
		}
		rendered = append(rendered, style.MaxWidth(width).Render(t.Text))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
