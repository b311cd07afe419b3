package llm

import (
	"fmt"
	"strings"
)

// MaxHistoryTurns bounds how much of the conversation goes into a prompt
const MaxHistoryTurns = 20

// BuildPrompt creates a plain-text chat prompt from the history and topic
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant in a group chat. Answer the last user message briefly and in plain text.\n")

	history := req.History
	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", speaker(t.IsBot), strings.TrimSpace(t.Content))
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\nAssistant:", strings.TrimSpace(req.Topic))
	return b.String()
}

func speaker(isBot bool) string {
	if isBot {
		return "Assistant"
	}
	return "User"
}

// CleanReply trims whitespace and a leading speaker label some models echo
func CleanReply(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "Assistant:")
	return strings.TrimSpace(content)
}
