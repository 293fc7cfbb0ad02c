// Package tutor is the text chat tutor for concurso preparation.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/aprova/internal/llm"
	"go.uber.org/zap"
)

// Persona selects the tutor's system prompt.
type Persona string

const (
	PersonaTutor  Persona = "tutor"
	PersonaMentor Persona = "mentor"
)

const (
	tutorPrompt  = "Você é um tutor especializado em concursos públicos no Brasil. Ajude o aluno a entender conceitos de Direito, Português e outras matérias. Seja didático e incentive o estudo."
	mentorPrompt = "Você é um Mentor Técnico para concursos. Suas respostas devem ser curtas, diretas e estritamente profissionais. Evite saudações longas."

	// NoAnswer replaces an empty model reply.
	NoAnswer = "Sem resposta."

	DefaultMaxTurns  = 10
	defaultMaxTokens = 1024
)

// ErrEmptyMessage is returned by Ask for blank input.
var ErrEmptyMessage = errors.New("tutor: empty message")

// SystemPrompt returns the prompt for a persona. Unknown personas fall back
// to the tutor.
func (p Persona) SystemPrompt() string {
	if p == PersonaMentor {
		return mentorPrompt
	}
	return tutorPrompt
}

// ParsePersona maps a name to a Persona.
func ParsePersona(s string) (Persona, error) {
	switch Persona(strings.ToLower(strings.TrimSpace(s))) {
	case "", PersonaTutor:
		return PersonaTutor, nil
	case PersonaMentor:
		return PersonaMentor, nil
	}
	return "", fmt.Errorf("unknown persona %q (want tutor or mentor)", s)
}

// Options configures a Tutor.
type Options struct {
	Persona  Persona
	MaxTurns int // question/answer pairs kept as context
	Logger   *zap.Logger
}

// Tutor keeps a bounded conversation with the model. Safe for concurrent
// use; calls are serialized.
type Tutor struct {
	provider llm.Provider
	persona  Persona
	maxTurns int
	logger   *zap.Logger

	mu      sync.Mutex
	history []llm.Message
}

// New creates a Tutor.
func New(provider llm.Provider, opts Options) *Tutor {
	if opts.Persona == "" {
		opts.Persona = PersonaTutor
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Tutor{
		provider: provider,
		persona:  opts.Persona,
		maxTurns: opts.MaxTurns,
		logger:   opts.Logger,
	}
}

// Persona returns the active persona.
func (t *Tutor) Persona() Persona {
	return t.persona
}

// Ask sends message with the conversation so far and returns the reply.
// A failed call leaves the history untouched.
func (t *Tutor) Ask(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := make([]llm.Message, 0, len(t.history)+1)
	msgs = append(msgs, t.history...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	resp, err := t.provider.Generate(llm.WithPurpose(ctx, llm.PurposeTutor), llm.Request{
		System:      t.persona.SystemPrompt(),
		Messages:    msgs,
		MaxTokens:   defaultMaxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		t.logger.Warn("tutor request failed", zap.Error(err))
		return "", fmt.Errorf("ask tutor: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		reply = NoAnswer
	}

	t.history = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: reply})
	if limit := 2 * t.maxTurns; len(t.history) > limit {
		t.history = append([]llm.Message(nil), t.history[len(t.history)-limit:]...)
	}
	return reply, nil
}

// History returns a copy of the retained conversation.
func (t *Tutor) History() []llm.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]llm.Message(nil), t.history...)
}

// Reset forgets the conversation.
func (t *Tutor) Reset() {
	t.mu.Lock()
	t.history = nil
	t.mu.Unlock()
}
