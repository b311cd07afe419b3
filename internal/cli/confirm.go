package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/chzyer/readline"
)

// Confirmer asks yes/no questions on the terminal. It implements
// session.Confirmer and must not be used while a readline prompt is open.
type Confirmer struct {
	// AssumeYes skips the prompt
	AssumeYes bool
}

func (c Confirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	if c.AssumeYes {
		return true, nil
	}

	surveyQuestion := &survey.Confirm{
		Message: prompt,
	}
	confirm := false
	if err := survey.AskOne(surveyQuestion, &confirm); err != nil {
		return false, err
	}
	return confirm, nil
}

// LineConfirmer asks yes/no questions on the interactive shell's own input,
// so the answer is not split between two terminal readers. It implements
// session.Confirmer.
type LineConfirmer struct {
	mu sync.Mutex
	in LineReader
}

// Attach sets the input to read answers from; nil detaches it
func (c *LineConfirmer) Attach(in LineReader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.in = in
}

func (c *LineConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	c.mu.Lock()
	in := c.in
	c.mu.Unlock()
	if in == nil {
		return false, errNoInput
	}

	in.SetPrompt(question + " [y/N] ")
	defer in.SetPrompt(defaultPrompt)

	line, err := in.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return IsYes(line), nil
}

var errNoInput = errors.New("no input attached")

// IsYes reports whether an answer means yes
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
