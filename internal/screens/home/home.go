package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/screens/chat"
	"github.com/abhisek/aprova/internal/screens/dashboard"
	"github.com/abhisek/aprova/internal/screens/history"
	"github.com/abhisek/aprova/internal/screens/news"
	"github.com/abhisek/aprova/internal/screens/placeholder"
	"github.com/abhisek/aprova/internal/screens/simulator"
	"github.com/abhisek/aprova/internal/ui/components"
)

const apiKeyHint = "Configure GEMINI_API_KEY e reinicie o aprova."

// Deps are the services behind the menu entries. A nil dependency turns
// its entry into a placeholder.
type Deps struct {
	Generator    questiongen.Generator
	QuizOptions  quiz.Options
	QuizDefaults quiz.Config
	Performance  dashboard.Performance
	History      history.Source
	Tutor        chat.Tutor
	News         news.Searcher
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	menuLabels := []string{"SIMULADO", "DESEMPENHO", "TUTOR", "NOTÍCIAS", "HISTÓRICO", "SAIR"}

	items := []components.MenuItem{
		{Label: menuLabels[0], Action: func() tea.Cmd {
			if deps.Generator == nil {
				return push(placeholder.New("Simulado", apiKeyHint))
			}
			return push(simulator.New(deps.Generator, deps.QuizOptions, deps.QuizDefaults))
		}},
		{Label: menuLabels[1], Action: func() tea.Cmd {
			if deps.Performance == nil {
				return push(placeholder.New("Desempenho", ""))
			}
			return push(dashboard.New(deps.Performance))
		}},
		{Label: menuLabels[2], Action: func() tea.Cmd {
			if deps.Tutor == nil {
				return push(placeholder.New("Tutor", apiKeyHint))
			}
			return push(chat.New(deps.Tutor))
		}},
		{Label: menuLabels[3], Action: func() tea.Cmd {
			if deps.News == nil {
				return push(placeholder.New("Notícias", apiKeyHint))
			}
			return push(news.New(deps.News))
		}},
		{Label: menuLabels[4], Action: func() tea.Cmd {
			if deps.History == nil {
				return push(placeholder.New("Histórico", ""))
			}
			return push(history.New(deps.History))
		}},
		{Label: menuLabels[5], Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps:       deps,
		menu:       components.NewMenu(items),
		menuLabels: menuLabels,
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < 34 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))

	if h.deps.Performance != nil {
		sections = append(sections, renderStatsBar(h.deps.Performance.Snapshot(), cw, compact))
	}
	if h.deps.Generator == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	if termHeight < 30 {
		sections = append(sections, renderMenuCompact(h.menuLabels, h.menu.Selected, cw))
	} else {
		sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw))
	}

	content := strings.Join(sections, "\n\n")
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Início"
}
