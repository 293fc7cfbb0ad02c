package tutor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/abhisek/aprova/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskSendsPersonaAndHistory(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.TextResponse("Crase é a fusão de preposição e artigo."),
		llm.TextResponse("Antes de palavras femininas."),
	)
	tu := New(mock, Options{})

	reply, err := tu.Ask(context.Background(), "  O que é crase? ")
	require.NoError(t, err)
	assert.Equal(t, "Crase é a fusão de preposição e artigo.", reply)

	_, err = tu.Ask(context.Background(), "Quando usar?")
	require.NoError(t, err)

	require.Len(t, mock.Calls, 2)
	assert.Equal(t, tutorPrompt, mock.Calls[0].System)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "O que é crase?"},
		{Role: llm.RoleAssistant, Content: "Crase é a fusão de preposição e artigo."},
		{Role: llm.RoleUser, Content: "Quando usar?"},
	}, mock.Calls[1].Messages)
	assert.Len(t, tu.History(), 4)
}

func TestAskRejectsEmptyMessage(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := New(mock, Options{}).Ask(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Zero(t, mock.CallCount())
}

func TestAskEmptyReply(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("   "))
	reply, err := New(mock, Options{}).Ask(context.Background(), "oi")
	require.NoError(t, err)
	assert.Equal(t, NoAnswer, reply)
}

func TestAskFailureKeepsHistory(t *testing.T) {
	boom := errors.New("down")
	mock := llm.NewMockProvider(llm.TextResponse("um"), llm.MockResponse{Err: boom})
	tu := New(mock, Options{})

	_, err := tu.Ask(context.Background(), "primeira")
	require.NoError(t, err)
	_, err = tu.Ask(context.Background(), "segunda")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, tu.History(), 2)
}

func TestHistoryIsBounded(t *testing.T) {
	mock := llm.NewMockProvider()
	for i := range 5 {
		mock.AddResponse(llm.TextResponse(fmt.Sprintf("r%d", i)))
	}
	tu := New(mock, Options{MaxTurns: 2})

	for i := range 5 {
		_, err := tu.Ask(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	h := tu.History()
	require.Len(t, h, 4)
	assert.Equal(t, "q3", h[0].Content)
	assert.Equal(t, "r4", h[3].Content)
	assert.Len(t, mock.Calls[4].Messages, 5)
}

func TestReset(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("a"), llm.TextResponse("b"))
	tu := New(mock, Options{Persona: PersonaMentor})

	_, err := tu.Ask(context.Background(), "x")
	require.NoError(t, err)
	tu.Reset()
	assert.Empty(t, tu.History())

	_, err = tu.Ask(context.Background(), "y")
	require.NoError(t, err)
	assert.Len(t, mock.Calls[1].Messages, 1)
	assert.Equal(t, mentorPrompt, mock.Calls[1].System)
}

func TestParsePersona(t *testing.T) {
	p, err := ParsePersona("")
	require.NoError(t, err)
	assert.Equal(t, PersonaTutor, p)

	p, err = ParsePersona(" Mentor ")
	require.NoError(t, err)
	assert.Equal(t, PersonaMentor, p)

	_, err = ParsePersona("coach")
	assert.Error(t, err)
}
