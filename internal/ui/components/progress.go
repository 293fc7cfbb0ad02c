package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/ui/theme"
)

// Accuracy thresholds for the bar fill color.
const (
	goodAccuracy = 0.7
	fairAccuracy = 0.5
)

// AccuracyBar renders a labelled horizontal bar for a ratio in [0,1],
// colored by how close it is to a passing score.
type AccuracyBar struct {
	Label string
	Ratio float64
	// Detail is appended after the percentage, e.g. "12/20".
	Detail string
	Width  int
}

// NewAccuracyBar creates a bar for correct out of total answers.
func NewAccuracyBar(label string, correct, total, width int) AccuracyBar {
	var ratio float64
	if total > 0 {
		ratio = float64(correct) / float64(total)
	}
	return AccuracyBar{
		Label:  label,
		Ratio:  ratio,
		Detail: fmt.Sprintf("%d/%d", correct, total),
		Width:  width,
	}
}

// FillColor picks the bar color for a ratio.
func FillColor(ratio float64) color.Color {
	switch {
	case ratio >= goodAccuracy:
		return theme.Success
	case ratio >= fairAccuracy:
		return theme.Accent
	default:
		return theme.Error
	}
}

func (p AccuracyBar) View() string {
	ratio := min(max(p.Ratio, 0), 1)

	var label string
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	suffix := fmt.Sprintf("  %3d%%", int(ratio*100+0.5))
	if p.Detail != "" {
		suffix += "  " + p.Detail
	}

	barWidth := max(p.Width-lipgloss.Width(label)-lipgloss.Width(suffix), 4)
	filled := int(float64(barWidth) * ratio)

	return label +
		lipgloss.NewStyle().Background(FillColor(ratio)).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
}
