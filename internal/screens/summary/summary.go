package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/ui/layout"
	"github.com/abhisek/aprova/internal/ui/theme"
)

// SummaryScreen displays the result of a finished quiz.
type SummaryScreen struct {
	summary quiz.Summary
	config  quiz.Config
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary quiz.Summary, config quiz.Config) *SummaryScreen {
	return &SummaryScreen{summary: summary, config: config}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resultado"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Novo simulado"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(Headline(sum.EndReason)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s · %s · %s", s.config.Source, s.config.Subject, s.config.Difficulty)))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Respondidas: %d/%d        Acertos: %d        Aproveitamento: %.0f%%",
		sum.Answered, s.config.QuestionCount, sum.Correct, sum.Accuracy()*100)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	timeLine := fmt.Sprintf("Tempo total: %s        Média por questão: %s",
		FormatDuration(sum.Elapsed), FormatDuration(sum.AveragePerQuestion))
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Secondary).
		Render(timeLine))

	return b.String()
}

// Headline returns the title shown for an end reason.
func Headline(reason quiz.EndReason) string {
	switch reason {
	case quiz.EndTimeExpired:
		return "Tempo esgotado!"
	case quiz.EndAbandoned:
		return "Simulado interrompido"
	default:
		return "Simulado concluído!"
	}
}

// FormatDuration renders a duration as m:ss, or h:mm:ss from one hour up.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	h, m, sec := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
