// Package dashboard renders the performance record: global accuracy and
// one bar per subject.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/ui/components"
	"github.com/abhisek/aprova/internal/ui/layout"
	"github.com/abhisek/aprova/internal/ui/theme"
)

// Performance is the record shown on the dashboard.
type Performance interface {
	Snapshot() performance.Record
	Reset(ctx context.Context) error
}

type resetDoneMsg struct {
	Err error
}

// DashboardScreen shows the performance record.
type DashboardScreen struct {
	perf       Performance
	confirming bool
	errMsg     string
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)

// New creates a new DashboardScreen.
func New(perf Performance) *DashboardScreen {
	return &DashboardScreen{perf: perf}
}

func (d *DashboardScreen) Init() tea.Cmd {
	return nil
}

func (d *DashboardScreen) Title() string {
	return "Desempenho"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	if d.confirming {
		return []layout.KeyHint{
			{Key: "S", Description: "Zerar"},
			{Key: "N", Description: "Cancelar"},
		}
	}
	return []layout.KeyHint{
		{Key: "R", Description: "Zerar desempenho"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resetDoneMsg:
		if msg.Err != nil {
			d.errMsg = msg.Err.Error()
		}
		return d, nil

	case tea.KeyMsg:
		key := msg.String()
		if d.confirming {
			d.confirming = false
			if key == "s" || key == "S" || key == "y" || key == "Y" {
				perf := d.perf
				return d, func() tea.Msg {
					return resetDoneMsg{Err: perf.Reset(context.Background())}
				}
			}
			return d, nil
		}
		if key == "r" || key == "R" {
			d.confirming = true
			d.errMsg = ""
		}
	}
	return d, nil
}

func (d *DashboardScreen) View(width, height int) string {
	rec := d.perf.Snapshot()
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")

	if rec.TotalAnswered == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Nenhuma questão respondida ainda. Faça um simulado!"))
		return b.String()
	}

	overall := fmt.Sprintf("%d questões  ·  %d acertos  ·  %.0f%% de aproveitamento",
		rec.TotalAnswered, rec.CorrectAnswers, rec.Accuracy()*100)
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).Bold(true).
		Render(overall))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.NewAccuracyBar("Geral", rec.CorrectAnswers, rec.TotalAnswered, cw).View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Por matéria")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))))
	b.WriteString("\n\n")

	rows := rec.Breakdown(questiongen.Subjects)
	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, lipgloss.Width(row.Subject))
	}
	for _, row := range rows {
		label := row.Subject + strings.Repeat(" ", labelWidth-lipgloss.Width(row.Subject))
		bar := components.NewAccuracyBar(label, row.Correct, row.Total, cw).View()
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar))
		b.WriteString("\n")
	}

	if d.confirming {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Accent).Bold(true).
			Render("Zerar todo o desempenho? [S/N]"))
	}
	if d.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Erro: " + d.errMsg))
	}
	return b.String()
}
