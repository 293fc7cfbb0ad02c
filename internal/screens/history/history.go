package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/screens/summary"
	"github.com/abhisek/aprova/internal/store"
	"github.com/abhisek/aprova/internal/ui/layout"
	"github.com/abhisek/aprova/internal/ui/theme"
)

const historyLimit = 50

// Source lists recent quiz sessions.
type Source interface {
	RecentQuizSessions(ctx context.Context, limit int) ([]store.QuizSession, error)
}

type historyLoadedMsg struct {
	Sessions []store.QuizSession
	Err      error
}

// HistoryScreen displays past quiz sessions.
type HistoryScreen struct {
	source   Source
	sessions []store.QuizSession
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(source Source) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	source := s.source
	return func() tea.Msg {
		sessions, err := source.RecentQuizSessions(context.Background(), historyLimit)
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Histórico"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Detalhes"},
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nErro: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Carregando histórico...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nenhum simulado ainda. Comece a praticar!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		var accuracy float64
		if sess.Answered > 0 {
			accuracy = float64(sess.Correct) / float64(sess.Answered) * 100
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-24s %2d/%-2d  %3.0f%%  %s",
			prefix,
			sess.Timestamp.Local().Format("02/01/2006 15:04"),
			sess.Subject,
			sess.Correct, sess.Answered,
			accuracy,
			summary.FormatDuration(sess.Elapsed))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := fmt.Sprintf("    %s · %s · %d questões em %s · %s",
				sess.Source, sess.Difficulty, sess.QuestionCount,
				summary.FormatDuration(sess.TimeLimit),
				summary.Headline(quiz.EndReason(sess.EndReason)))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
