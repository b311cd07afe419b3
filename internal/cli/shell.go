package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/crewchat/internal/session"
	"github.com/Rrens/crewchat/internal/ui"
)

const (
	clearScreen   = "\033[H\033[2J"
	defaultPrompt = "> "
)

// LineReader is the shell's input. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

const helpText = `Type a message to send it to the selected chat.
  /new <title>       create a chat and select it
  /select <n|id>     select a chat by list number or id
  /delete [n|id]     delete a chat (defaults to the selected one)
  /chats             reload the chat list
  /quit              leave
`

// Shell is the interactive chat loop
type Shell struct {
	session *session.Session
	toaster *ui.Toaster
	width   int

	historyFile string

	in        LineReader
	confirmer *LineConfirmer

	outMu sync.Mutex
	out   io.Writer
	sends sync.WaitGroup
}

// ShellOptions configures a Shell
type ShellOptions struct {
	Session     *session.Session
	Toaster     *ui.Toaster
	Width       int
	HistoryFile string
	// Confirmer is attached to the shell input while Run is active
	Confirmer *LineConfirmer
	// Input and Output replace the terminal prompt when set
	Input  LineReader
	Output io.Writer
}

func NewShell(opts ShellOptions) *Shell {
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	return &Shell{
		session:     opts.Session,
		toaster:     opts.Toaster,
		width:       width,
		historyFile: opts.HistoryFile,
		confirmer:   opts.Confirmer,
		in:          opts.Input,
		out:         opts.Output,
	}
}

// Run reads commands until /quit, EOF or ctx is cancelled
func (s *Shell) Run(ctx context.Context) error {
	in := s.in
	if in == nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:            defaultPrompt,
			InterruptPrompt:   "^C",
			EOFPrompt:         "exit",
			HistoryFile:       s.historyFile,
			HistorySearchFold: true,
		})
		if err != nil {
			return fmt.Errorf("failed to start prompt: %w", err)
		}
		defer rl.Close()
		in = rl

		s.outMu.Lock()
		if s.out == nil {
			s.out = rl.Stdout()
		}
		s.outMu.Unlock()
	}

	// Confirmations must read from the same input as the prompt
	if s.confirmer != nil {
		s.confirmer.Attach(in)
		defer s.confirmer.Attach(nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.redrawLoop(ctx)
	s.redraw()

	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if quit := s.Handle(ctx, ParseLine(line)); quit {
			break
		}
	}

	cancel()
	s.sends.Wait()
	return nil
}

// Handle executes one command. It reports whether the shell should exit.
func (s *Shell) Handle(ctx context.Context, cmd Command) bool {
	switch cmd.Kind {
	case KindQuit:
		return true

	case KindHelp:
		s.print(helpText)

	case KindUnknown:
		s.print(fmt.Sprintf("unknown command %s, try /help\n", cmd.Arg))

	case KindChats:
		if err := s.session.LoadChats(ctx); err != nil {
			log.Debug().Err(err).Msg("reload chats")
		}

	case KindNew:
		if _, err := s.session.CreateChat(ctx, cmd.Arg); err != nil {
			s.print(err.Error() + "\n")
		}

	case KindSelect:
		id, err := ResolveChat(s.session.Snapshot().Chats, cmd.Arg)
		if err != nil {
			s.print(err.Error() + "\n")
			return false
		}
		s.session.SelectChat(id)

	case KindDelete:
		snap := s.session.Snapshot()
		ref := cmd.Arg
		if ref == "" && snap.HasSelection() {
			ref = snap.SelectedID.String()
		}
		id, err := ResolveChat(snap.Chats, ref)
		if err != nil {
			s.print(err.Error() + "\n")
			return false
		}
		if _, err := s.session.DeleteChat(ctx, id); err != nil {
			log.Debug().Err(err).Msg("delete chat")
		}

	case KindSend:
		if cmd.Arg == "" {
			return false
		}
		// The prompt stays usable while the bot replies
		s.sends.Add(1)
		go func() {
			defer s.sends.Done()
			if err := s.session.SendMessage(ctx, cmd.Arg); err != nil {
				s.print(err.Error() + "\n")
			}
		}()
	}
	return false
}

func (s *Shell) redrawLoop(ctx context.Context) {
	changes, unsubscribe := s.session.Subscribe()
	defer unsubscribe()

	var toasts <-chan struct{}
	if s.toaster != nil {
		toasts = s.toaster.Changes()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
		case <-toasts:
		}
		s.redraw()
	}
}

func (s *Shell) redraw() {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(ui.Render(s.session.Snapshot(), s.width))
	b.WriteString("\n")
	if s.toaster != nil {
		if toasts := ui.RenderToasts(s.toaster.Active(), s.width); toasts != "" {
			b.WriteString(toasts)
			b.WriteString("\n")
		}
	}
	s.print(b.String())
}

func (s *Shell) print(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.out == nil {
		return
	}
	_, _ = io.WriteString(s.out, text)
}
