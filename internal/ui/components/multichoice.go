package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/ui/theme"
)

// Choice is one labeled alternative.
type Choice struct {
	ID   string
	Text string
}

// MultiChoice is a lettered multiple-choice selector. Options can be
// picked by letter, by position (1-9) or with the arrows and Enter.
type MultiChoice struct {
	Choices  []Choice
	Selected int

	// Submitted is set once a choice has been picked; ChosenID holds it.
	Submitted bool
	ChosenID  string

	// CorrectID is set by Reveal and switches the view to feedback colors.
	CorrectID string
}

// NewMultiChoice creates a selector over choices.
func NewMultiChoice(choices []Choice) MultiChoice {
	return MultiChoice{Choices: choices}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles navigation and selection. Input is ignored after a
// choice has been submitted.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted || len(m.Choices) == 0 {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Choices)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		m.submit(m.Selected)
		return m, nil
	}

	if len(key) != 1 {
		return m, nil
	}
	if c := key[0]; c >= '1' && c <= '9' {
		if i := int(c - '1'); i < len(m.Choices) {
			m.submit(i)
		}
		return m, nil
	}
	for i, ch := range m.Choices {
		if strings.EqualFold(ch.ID, key) {
			m.submit(i)
			break
		}
	}
	return m, nil
}

func (m *MultiChoice) submit(i int) {
	m.Selected = i
	m.Submitted = true
	m.ChosenID = m.Choices[i].ID
}

// Reveal marks the chosen and correct choices for feedback rendering.
func (m *MultiChoice) Reveal(chosenID, correctID string) {
	m.Submitted = true
	m.ChosenID = chosenID
	m.CorrectID = correctID
	for i, ch := range m.Choices {
		if ch.ID == chosenID {
			m.Selected = i
		}
	}
}

// View renders the choices, each wrapped to width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	textWidth := width - 6
	if textWidth < 10 {
		textWidth = 10
	}

	for i, ch := range m.Choices {
		prefix := "  "
		if i == m.Selected && m.CorrectID == "" {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, ch.ID, ch.Text)

		style := lipgloss.NewStyle().Width(textWidth)
		switch {
		case m.CorrectID != "" && ch.ID == m.CorrectID:
			style = style.Foreground(theme.Success).Bold(true)
		case m.CorrectID != "" && ch.ID == m.ChosenID:
			style = style.Foreground(theme.Error).Bold(true)
		case m.CorrectID != "":
			style = style.Foreground(theme.TextDim)
		case i == m.Selected:
			style = style.Foreground(theme.Primary).Bold(true)
		default:
			style = style.Foreground(theme.Text)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// IsCorrect returns true if the chosen answer matches the revealed key.
func (m MultiChoice) IsCorrect() bool {
	return m.Submitted && m.CorrectID != "" && m.ChosenID == m.CorrectID
}
