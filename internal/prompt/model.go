package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)

	buttonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"})

	yesStyle        = buttonStyle.Background(lipgloss.AdaptiveColor{Light: "#5A7BB5", Dark: "#3D5A80"})
	yesFocusedStyle = buttonStyle.Background(lipgloss.AdaptiveColor{Light: "#2F5BA8", Dark: "#4F7CC0"}).
			Underline(true).UnderlineSpaces(true)
	noStyle        = buttonStyle.Background(lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#4A4A4A"})
	noFocusedStyle = buttonStyle.Background(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6A6A6A"}).
			Underline(true).UnderlineSpaces(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#888888", Dark: "#666666"})
)

// Model is a single yes/no question. Focus starts on "No".
type Model struct {
	question string
	keys     KeyMap
	focusYes bool
	done     bool
	answer   bool
}

// New creates a prompt for question.
func New(question string) Model {
	return Model{
		question: question,
		keys:     DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		return m.finish(true)
	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Cancel):
		return m.finish(false)
	case key.Matches(keyMsg, m.keys.Submit):
		return m.finish(m.focusYes)
	case key.Matches(keyMsg, m.keys.Toggle):
		m.focusYes = !m.focusYes
	}
	return m, nil
}

func (m Model) finish(answer bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.answer = answer
	return m, tea.Quit
}

// View implements tea.Model. A finished prompt renders the chosen answer only.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render(m.question))

	if m.done {
		if m.answer {
			b.WriteString(" yes\n")
		} else {
			b.WriteString(" no\n")
		}
		return b.String()
	}

	yes, no := yesStyle, noFocusedStyle
	if m.focusYes {
		yes, no = yesFocusedStyle, noStyle
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No")))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpLine() string {
	parts := make([]string, 0, 5)
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

// Answer returns the user's choice; answered is false if the prompt was never
// completed.
func (m Model) Answer() (answer, answered bool) {
	return m.answer, m.done
}
