package placeholder

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/ui/theme"
)

// PlaceholderScreen stands in for a feature whose dependencies are not
// configured.
type PlaceholderScreen struct {
	title string
	hint  string
}

var _ screen.Screen = (*PlaceholderScreen)(nil)

// New creates a new PlaceholderScreen. hint tells the user how to enable
// the feature.
func New(title, hint string) *PlaceholderScreen {
	return &PlaceholderScreen{title: title, hint: hint}
}

func (p *PlaceholderScreen) Init() tea.Cmd {
	return nil
}

func (p *PlaceholderScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return p, nil
}

func (p *PlaceholderScreen) View(width, height int) string {
	body := "╌╌ Indisponível ╌╌\n\nEste recurso ainda não está configurado."
	if p.hint != "" {
		body += "\n" + p.hint
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(body)
}

func (p *PlaceholderScreen) Title() string {
	return p.title
}
