package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/screens/home"
	"github.com/abhisek/aprova/internal/screens/welcome"
	"github.com/abhisek/aprova/internal/ui/layout"
)

// Options wires the services used by the TUI.
type Options struct {
	home.Deps

	// SkipSplash starts directly on the home menu.
	SkipSplash bool
	Logger     *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	width  int
	height int
}

// newAppModel creates a new AppModel with the splash or the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	homeFactory := func() screen.Screen { return home.New(opts.Deps) }

	var first screen.Screen
	if opts.SkipSplash {
		first = homeFactory()
	} else {
		first = welcome.New(homeFactory)
	}
	return AppModel{
		router: router.New(first),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	if s := m.router.Active(); s != nil {
		return s.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.opts.Logger.Debug("quit requested")
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var accuracy float64
	var answered int
	if m.opts.Performance != nil {
		rec := m.opts.Performance.Snapshot()
		accuracy, answered = rec.Accuracy(), rec.TotalAnswered
	}
	header := layout.RenderHeader(title, accuracy, answered, m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Voltar"},
			{Key: "Ctrl+C", Description: "Sair"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navegar"},
			{Key: "Enter", Description: "Selecionar"},
			{Key: "Ctrl+C", Description: "Sair"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program. Screens still on the stack are
// closed when it exits.
func Run(opts Options) error {
	m := newAppModel(opts)
	defer m.router.CloseAll()

	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Erro ao executar o programa:", err)
		return err
	}
	return nil
}
