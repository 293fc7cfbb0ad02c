// Package news searches recent news and open exam notices.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/grounding"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/ui/components"
	"github.com/abhisek/aprova/internal/ui/layout"
	"github.com/abhisek/aprova/internal/ui/theme"
)

const searchTimeout = 60 * time.Second

// Searcher finds grounded news.
type Searcher interface {
	News(ctx context.Context, query string) (*grounding.NewsResult, error)
}

type resultMsg struct {
	Query  string
	Result *grounding.NewsResult
	Err    error
}

// NewsScreen shows a query box and the latest result.
type NewsScreen struct {
	searcher Searcher
	input    components.TextInput
	query    string
	result   *grounding.NewsResult
	loading  bool
	errMsg   string
}

var _ screen.Screen = (*NewsScreen)(nil)
var _ screen.KeyHintProvider = (*NewsScreen)(nil)

// New creates a new NewsScreen.
func New(searcher Searcher) *NewsScreen {
	return &NewsScreen{
		searcher: searcher,
		input:    components.NewTextInput("Ex.: concurso TRF 2026, edital INSS...", 200),
	}
}

func (s *NewsScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *NewsScreen) Title() string {
	return "Notícias"
}

func (s *NewsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Buscar"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *NewsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if msg.Query != s.query {
			return s, nil
		}
		s.loading = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = msg.Result
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return s, s.search()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *NewsScreen) search() tea.Cmd {
	q := strings.TrimSpace(s.input.Value())
	if q == "" || s.loading {
		return nil
	}
	s.query = q
	s.loading = true
	s.result = nil
	s.errMsg = ""

	searcher := s.searcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		res, err := searcher.News(ctx, q)
		return resultMsg{Query: q, Result: res, Err: err}
	}
}

func (s *NewsScreen) View(width, height int) string {
	textWidth := max(width-8, 20)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Padding(0, 3).Render("Buscar: " + s.input.View()))
	b.WriteString("\n\n")

	var lines []string
	switch {
	case s.loading:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("Buscando notícias sobre %q...", s.query)))
	case s.errMsg != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).Render("Erro: "+s.errMsg))
	case s.result != nil:
		body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Render(s.result.Text)
		lines = append(lines, strings.Split(body, "\n")...)
		if len(s.result.Sources) > 0 {
			lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.TextDim).Render("Fontes"))
			for _, src := range s.result.Sources {
				lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).
					Render("• "+src.Title)+lipgloss.NewStyle().Foreground(theme.TextDim).Render("  "+src.URI))
			}
		}
	default:
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("Pesquise notícias recentes e editais abertos."))
	}

	if room := height - 4; room > 0 && len(lines) > room {
		lines = lines[:room]
	}
	b.WriteString(lipgloss.NewStyle().Padding(0, 3).Render(strings.Join(lines, "\n")))
	return b.String()
}
