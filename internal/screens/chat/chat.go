// Package chat is the chat screen for the text tutor.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/tutor"
	"github.com/abhisek/aprova/internal/ui/components"
	"github.com/abhisek/aprova/internal/ui/layout"
	"github.com/abhisek/aprova/internal/ui/theme"
)

const askTimeout = 60 * time.Second

// Tutor answers chat messages.
type Tutor interface {
	Ask(ctx context.Context, message string) (string, error)
	Reset()
}

type entry struct {
	fromUser bool
	text     string
}

type replyMsg struct {
	Reply string
	Err   error
}

// ChatScreen is a conversation with the tutor.
type ChatScreen struct {
	tutor   Tutor
	input   components.TextInput
	entries []entry
	waiting bool
	errMsg  string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a new ChatScreen.
func New(t Tutor) *ChatScreen {
	return &ChatScreen{
		tutor: t,
		input: components.NewTextInput("Pergunte ao tutor...", 500),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Tutor"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Enviar"},
		{Key: "Ctrl+R", Description: "Nova conversa"},
		{Key: "Esc", Description: "Voltar"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		s.waiting = false
		s.input.Busy = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.entries = append(s.entries, entry{text: msg.Reply})
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.send()
		case "ctrl+r":
			if s.waiting {
				return s, nil
			}
			s.tutor.Reset()
			s.entries = nil
			s.errMsg = ""
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) send() tea.Cmd {
	if s.waiting {
		return nil
	}
	text := s.input.Take()
	if text == "" {
		return nil
	}
	s.entries = append(s.entries, entry{fromUser: true, text: text})
	s.waiting = true
	s.input.Busy = true
	s.errMsg = ""

	t := s.tutor
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()
		reply, err := t.Ask(ctx, text)
		if errors.Is(err, tutor.ErrEmptyMessage) {
			err = nil
			reply = tutor.NoAnswer
		}
		return replyMsg{Reply: reply, Err: err}
	}
}

func (s *ChatScreen) View(width, height int) string {
	textWidth := max(width-8, 20)

	var lines []string
	if len(s.entries) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("Tire suas dúvidas sobre as matérias do seu concurso."))
	}
	for _, e := range s.entries {
		label := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Tutor")
		if e.fromUser {
			label = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Você")
		}
		body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Render(e.text)
		lines = append(lines, label)
		lines = append(lines, strings.Split(body, "\n")...)
		lines = append(lines, "")
	}
	if s.waiting {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Render("Tutor está digitando..."))
	}
	if s.errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Error).Render("Erro: "+s.errMsg))
	}

	// Keep the newest lines; the input takes the bottom of the screen.
	if room := height - 4; room > 0 && len(lines) > room {
		lines = lines[len(lines)-room:]
	}

	transcript := lipgloss.NewStyle().Padding(0, 3).Render(strings.Join(lines, "\n"))
	prompt := lipgloss.NewStyle().Padding(0, 3).Render("› " + s.input.View())
	return "\n" + transcript + "\n\n" + prompt
}
