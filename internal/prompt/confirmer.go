// Package prompt asks the user yes/no questions before the registry creates or
// clears a dataset.
package prompt

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/log"
)

// TTY asks questions with an interactive bubbletea prompt. When input is not a
// terminal every question is answered "no" without prompting.
type TTY struct {
	in         io.Reader
	out        io.Writer
	isTerminal func() bool
}

// Ensure implementations satisfy dataset.Confirmer.
var (
	_ dataset.Confirmer = (*TTY)(nil)
	_ dataset.Confirmer = AssumeYes{}
	_ dataset.Confirmer = Static{}
)

// NewTTY prompts on stdin and renders to stderr, keeping stdout for results.
func NewTTY() *TTY {
	return &TTY{
		in:  os.Stdin,
		out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // G115: fd fits in int
		},
	}
}

// Confirm implements dataset.Confirmer.
func (t *TTY) Confirm(ctx context.Context, question string) (bool, error) {
	if t.isTerminal != nil && !t.isTerminal() {
		log.Warn(log.CatPrompt, "Input is not a terminal, answering no", "question", question)
		return false, nil
	}

	// Query the background color before the program owns stdin, otherwise the
	// terminal's OSC 11 reply can race with the input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()

	p := tea.NewProgram(New(question),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return false, fmt.Errorf("run prompt: unexpected model %T", final)
	}
	answer, answered := m.Answer()
	log.Debug(log.CatPrompt, "Prompt answered", "question", question, "answer", answer, "answered", answered)
	return answer && answered, nil
}

// AssumeYes answers every question "yes". Used for --yes and assume_yes.
type AssumeYes struct{}

// Confirm implements dataset.Confirmer.
func (AssumeYes) Confirm(_ context.Context, question string) (bool, error) {
	log.Debug(log.CatPrompt, "Assuming yes", "question", question)
	return true, nil
}

// Static answers every question with Answer.
type Static struct {
	Answer bool
}

// Confirm implements dataset.Confirmer.
func (s Static) Confirm(context.Context, string) (bool, error) {
	return s.Answer, nil
}
