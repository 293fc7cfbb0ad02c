package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/ui/components"
	"github.com/abhisek/aprova/internal/ui/theme"
)

// Block-letter title (same art as welcome/banner.go).
const titleFull = `  █████╗ ██████╗ ██████╗  ██████╗ ██╗   ██╗ █████╗
 ██╔══██╗██╔══██╗██╔══██╗██╔═══██╗██║   ██║██╔══██╗
 ███████║██████╔╝██████╔╝██║   ██║██║   ██║███████║
 ██╔══██║██╔═══╝ ██╔══██╗██║   ██║╚██╗ ██╔╝██╔══██║
 ██║  ██║██║     ██║  ██║╚██████╔╝ ╚████╔╝ ██║  ██║
 ╚═╝  ╚═╝╚═╝     ╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚═╝  ╚═╝`

const titleCompact = "A · P · R · O · V · A"

// minReviewAnswers is how many answers a subject needs before it can be
// suggested for review.
const minReviewAnswers = 3

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar renders the performance summary in a bordered box matching
// content width.
func renderStatsBar(rec performance.Record, cw int, compact bool) string {
	accStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	reviewStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	acc := "--"
	if rec.TotalAnswered > 0 {
		acc = fmt.Sprintf("%.0f%%", rec.Accuracy()*100)
	}
	weakest, ok := weakestSubject(rec)

	var stats string
	if compact {
		review := dimStyle.Render("⚑ -")
		if ok {
			review = reviewStyle.Render("⚑ " + weakest)
		}
		stats = fmt.Sprintf("%s %s %s",
			accStyle.Render("◎"+acc),
			countStyle.Render(fmt.Sprintf("✎%d", rec.TotalAnswered)),
			review,
		)
	} else {
		review := dimStyle.Render("⚑ SEM REVISÃO")
		if ok {
			review = reviewStyle.Render("⚑ REVISAR " + strings.ToUpper(weakest))
		}
		stats = fmt.Sprintf("%s  %s  %s",
			accStyle.Render("◎ "+acc+" ACERTOS"),
			countStyle.Render(fmt.Sprintf("✎ %d QUESTÕES", rec.TotalAnswered)),
			review,
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw-2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// weakestSubject returns the subject with the lowest accuracy among those
// with enough answers. Ties go to the first subject in catalog order.
func weakestSubject(rec performance.Record) (string, bool) {
	var (
		best  string
		found bool
		low   float64
	)
	for _, row := range rec.Breakdown(questiongen.Subjects) {
		if row.Total < minReviewAnswers {
			continue
		}
		if acc := row.Accuracy(); !found || acc < low {
			best, low, found = row.Subject, acc, true
		}
	}
	return best, found
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderMenu renders each menu item as a fixed-width button.
func renderMenu(items []string, selected int, cw int) string {
	var buttons []string
	for i, label := range items {
		buttons = append(buttons, components.MenuButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Highlight).
				Bold(true).
				Render(" ▸ "+label+" "))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Text).
			Render("   "+label))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderLLMBanner renders a warning banner when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Configure GEMINI_API_KEY para gerar questões (veja aprova --help)")
}
