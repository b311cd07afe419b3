package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Rrens/crewchat/internal/domain"
)

// Kind identifies a shell command
type Kind int

const (
	KindSend Kind = iota
	KindNew
	KindSelect
	KindDelete
	KindChats
	KindHelp
	KindQuit
	KindUnknown
)

// Command is one parsed input line
type Command struct {
	Kind Kind
	Arg  string
}

var commands = map[string]Kind{
	"/new":    KindNew,
	"/select": KindSelect,
	"/delete": KindDelete,
	"/chats":  KindChats,
	"/help":   KindHelp,
	"/quit":   KindQuit,
	"/exit":   KindQuit,
}

// ErrUnknownChat is returned when a chat reference matches nothing
var ErrUnknownChat = errors.New("unknown chat")

// ParseLine splits an input line into a command. Lines not starting with a
// slash are messages.
func ParseLine(line string) Command {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Command{Kind: KindSend, Arg: line}
	}

	name, arg, _ := strings.Cut(line, " ")
	kind, ok := commands[strings.ToLower(name)]
	if !ok {
		return Command{Kind: KindUnknown, Arg: name}
	}
	return Command{Kind: kind, Arg: strings.TrimSpace(arg)}
}

// ResolveChat finds a chat by 1-based list position, full id or id prefix
func ResolveChat(chats []domain.ChatSummary, ref string) (uuid.UUID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.Nil, domain.ErrChatIDRequired
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(chats) {
			return uuid.Nil, ErrUnknownChat
		}
		return chats[n-1].ID, nil
	}

	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	var match uuid.UUID
	for _, c := range chats {
		if strings.HasPrefix(c.ID.String(), strings.ToLower(ref)) {
			if match != uuid.Nil {
				return uuid.Nil, ErrUnknownChat
			}
			match = c.ID
		}
	}
	if match == uuid.Nil {
		return uuid.Nil, ErrUnknownChat
	}
	return match, nil
}
