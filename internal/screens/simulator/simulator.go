package simulator

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/screens/summary"
	"github.com/abhisek/aprova/internal/ui/components"
	"github.com/abhisek/aprova/internal/ui/layout"
)

// SimulatorScreen runs timed quizzes on a quiz.Engine. The engine is
// owned by the screen and closed when the screen leaves the stack, which
// records an unfinished session as abandoned.
type SimulatorScreen struct {
	eng    *quiz.Engine
	ctx    context.Context
	cancel context.CancelFunc

	snap       quiz.Snapshot
	form       form
	mc         components.MultiChoice
	questionID string

	tickGen     int
	lastSummary string
	errMsg      string
}

var _ screen.Screen = (*SimulatorScreen)(nil)
var _ screen.KeyHintProvider = (*SimulatorScreen)(nil)
var _ screen.Closer = (*SimulatorScreen)(nil)

// New creates a SimulatorScreen with its own engine. defaults pre-fill
// the configuration form.
func New(gen questiongen.Generator, opts quiz.Options, defaults quiz.Config) *SimulatorScreen {
	ctx, cancel := context.WithCancel(context.Background())
	s := &SimulatorScreen{
		eng:    quiz.NewEngine(gen, opts),
		ctx:    ctx,
		cancel: cancel,
		form:   newForm(defaults),
	}
	s.snap = s.eng.Snapshot()
	return s
}

func (s *SimulatorScreen) Init() tea.Cmd {
	return s.listen()
}

func (s *SimulatorScreen) Title() string {
	return "Simulado"
}

// Close abandons any running session and releases the engine.
func (s *SimulatorScreen) Close() {
	s.cancel()
	s.eng.Close()
}

func (s *SimulatorScreen) KeyHints() []layout.KeyHint {
	switch s.snap.Phase {
	case quiz.PhaseIdle, quiz.PhaseConfiguring:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Campo"},
			{Key: "←→", Description: "Alterar"},
			{Key: "Enter", Description: "Iniciar"},
			{Key: "Esc", Description: "Voltar"},
		}
	case quiz.PhaseActive:
		return []layout.KeyHint{
			{Key: "A-E", Description: "Responder"},
			{Key: "↑↓ Enter", Description: "Escolher"},
			{Key: "Esc", Description: "Abandonar"},
		}
	case quiz.PhaseReviewing:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Próxima"},
			{Key: "Esc", Description: "Abandonar"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Esc", Description: "Abandonar"},
		}
	}
}

func (s *SimulatorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case engineChangedMsg:
		return s.handleEngineChanged()

	case startedMsg:
		return s.handleStarted(msg)

	case advancedMsg:
		return s.handleAdvanced(msg)

	case timerTickMsg:
		return s.handleTimerTick(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// listen waits for the next engine change.
func (s *SimulatorScreen) listen() tea.Cmd {
	ctx, changes := s.ctx, s.eng.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return engineChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *SimulatorScreen) handleEngineChanged() (screen.Screen, tea.Cmd) {
	s.sync()
	cmds := []tea.Cmd{s.listen()}

	if sum := s.snap.Summary; s.snap.Phase == quiz.PhaseGameOver && sum != nil && sum.SessionID != s.lastSummary {
		s.lastSummary = sum.SessionID
		s.tickGen++
		result := *sum
		cfg := s.snap.Config
		_ = s.eng.Acknowledge()
		s.sync()
		cmds = append(cmds, func() tea.Msg {
			return router.PushScreenMsg{Screen: summary.New(result, cfg)}
		})
	}
	return s, tea.Batch(cmds...)
}

// sync refreshes the snapshot and rebuilds the choice list when the
// question changes.
func (s *SimulatorScreen) sync() {
	s.snap = s.eng.Snapshot()
	q := s.snap.Question
	if q == nil {
		s.questionID = ""
		return
	}
	if q.ID != s.questionID {
		s.questionID = q.ID
		choices := make([]components.Choice, len(q.Options))
		for i, o := range q.Options {
			choices[i] = components.Choice{ID: o.ID, Text: o.Text}
		}
		s.mc = components.NewMultiChoice(choices)
	}
	if s.snap.Phase == quiz.PhaseReviewing && s.mc.CorrectID == "" {
		s.mc.Reveal(s.snap.Selected, q.CorrectOptionID)
	}
}

func (s *SimulatorScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	s.sync()
	if msg.Err != nil {
		if errors.Is(msg.Err, quiz.ErrSuperseded) || errors.Is(msg.Err, quiz.ErrClosed) {
			return s, nil
		}
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.tickGen++
	return s, tickCmd(s.tickGen)
}

func (s *SimulatorScreen) handleAdvanced(msg advancedMsg) (screen.Screen, tea.Cmd) {
	s.sync()
	if msg.Err == nil {
		s.errMsg = ""
		return s, nil
	}
	var genErr *quiz.GenerationError
	if errors.As(msg.Err, &genErr) {
		s.errMsg = genErr.Error()
	}
	return s, nil
}

func (s *SimulatorScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if msg.Gen != s.tickGen {
		return s, nil
	}
	if !s.eng.Tick() {
		return s, nil
	}
	return s, tickCmd(msg.Gen)
}

func (s *SimulatorScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch s.snap.Phase {
	case quiz.PhaseIdle, quiz.PhaseConfiguring:
		if !s.form.update(msg.String()) {
			return s, nil
		}
		return s, s.start()

	case quiz.PhaseActive:
		var cmd tea.Cmd
		s.mc, cmd = s.mc.Update(msg)
		if s.mc.Submitted {
			return s, tea.Batch(cmd, s.submitAnswer())
		}
		return s, cmd

	case quiz.PhaseReviewing:
		switch msg.String() {
		case "enter", "space", " ", "n":
			return s, s.advance()
		}
	}
	return s, nil
}

func (s *SimulatorScreen) start() tea.Cmd {
	if err := s.eng.Configure(s.form.cfg); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	s.sync()

	eng, ctx := s.eng, s.ctx
	return func() tea.Msg {
		return startedMsg{Err: eng.Start(ctx)}
	}
}

func (s *SimulatorScreen) submitAnswer() tea.Cmd {
	res, err := s.eng.Answer(s.ctx, s.mc.ChosenID)
	if err != nil {
		s.errMsg = err.Error()
		s.mc.Submitted = false
		return nil
	}
	s.errMsg = ""
	s.mc.Reveal(res.Selected, res.CorrectOptionID)
	s.sync()
	return nil
}

func (s *SimulatorScreen) advance() tea.Cmd {
	s.errMsg = ""
	eng, ctx := s.eng, s.ctx
	return func() tea.Msg {
		return advancedMsg{Err: eng.Advance(ctx)}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{Gen: gen}
	})
}
