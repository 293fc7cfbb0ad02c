package simulator

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/screens/summary"
	"github.com/abhisek/aprova/internal/ui/theme"
)

func (s *SimulatorScreen) View(width, height int) string {
	switch s.snap.Phase {
	case quiz.PhaseIdle, quiz.PhaseConfiguring:
		return s.renderForm(width)
	case quiz.PhaseLoading:
		return s.renderLoading(width)
	case quiz.PhaseActive, quiz.PhaseReviewing:
		return s.renderQuestion(width)
	default:
		return centered(width, theme.TextDim, "\n\n  Encerrando simulado...")
	}
}

func (s *SimulatorScreen) renderForm(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Configurar simulado"))
	b.WriteString("\n\n")

	cfg := s.form.cfg
	values := [numFields]string{
		cfg.Source,
		cfg.Subject,
		cfg.Difficulty,
		fmt.Sprintf("%d", cfg.QuestionCount),
		fmt.Sprintf("%d min", int(cfg.TimeLimit/time.Minute)),
	}

	var rows []string
	for f := field(0); f < numFields; f++ {
		label := fmt.Sprintf("%-12s", fieldLabels[f])
		value := values[f]
		if f == s.form.focus {
			rows = append(rows, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).
				Render(fmt.Sprintf("▸ %s ◂ %s ▸", label, value)))
			continue
		}
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.Text).
			Render(fmt.Sprintf("  %s   %s", label, value)))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rows, "\n")))
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(centered(width, theme.Error, s.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(centered(width, theme.TextDim, "Pressione Enter para começar"))
	return b.String()
}

func (s *SimulatorScreen) renderLoading(width int) string {
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, theme.TextDim, "Gerando questão..."))
	return b.String()
}

// renderInfoLine renders the session line: settings on the left, the
// question counter, score and countdown on the right.
func (s *SimulatorScreen) renderInfoLine(width int) string {
	snap := s.snap
	cfg := snap.Config

	n := snap.Answered
	if snap.Phase != quiz.PhaseReviewing {
		n++
	}
	n = min(n, cfg.QuestionCount)

	timerStyle := theme.Timer
	if snap.Remaining <= time.Minute {
		timerStyle = theme.TimerLow
	}

	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s · %s", cfg.Source, cfg.Subject, cfg.Difficulty))

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d  ",
			n, cfg.QuestionCount,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✔"),
			snap.Correct,
		)) + timerStyle.Render("⏱ "+summary.FormatDuration(snap.Remaining))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
	return line + "\n" + rule
}

func (s *SimulatorScreen) renderQuestion(width int) string {
	q := s.snap.Question
	if q == nil {
		return s.renderLoading(width)
	}
	textWidth := min(width-8, 90)

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")

	statement := lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Statement)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, statement))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.mc.View(textWidth)))

	if s.snap.Phase == quiz.PhaseReviewing {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width, textWidth))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centered(width, theme.Error, s.errMsg))
	}
	return b.String()
}

func (s *SimulatorScreen) renderFeedback(width, textWidth int) string {
	snap := s.snap
	q := snap.Question

	var b strings.Builder
	if q.IsCorrect(snap.Selected) {
		b.WriteString(centered(width, theme.Success, "Correto!"))
	} else {
		b.WriteString(centered(width, theme.Error, "Incorreto"))
		b.WriteString("\n")
		b.WriteString(centered(width, theme.TextDim, "Resposta correta: "+q.CorrectOptionID))
	}
	b.WriteString("\n\n")

	if q.Explanation != "" {
		exp := lipgloss.NewStyle().
			Width(textWidth).
			Foreground(theme.Text).
			Render(q.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	next := "Enter para a próxima questão"
	if snap.Answered >= snap.Config.QuestionCount {
		next = "Enter para ver o resultado"
	} else if snap.PrefetchReady {
		next += " (pronta)"
	}
	b.WriteString(centered(width, theme.TextDim, next))
	return b.String()
}

func centered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}
