package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/aprova/internal/store"
)

type mockSource struct {
	sessions []store.QuizSession
	err      error
	limit    int
}

func (m *mockSource) RecentQuizSessions(_ context.Context, limit int) ([]store.QuizSession, error) {
	m.limit = limit
	return m.sessions, m.err
}

func testSessions() []store.QuizSession {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []store.QuizSession{
		{
			Sequence:  2,
			Timestamp: ts,
			QuizSessionData: store.QuizSessionData{
				ID: "s-2", Source: "FCC", Subject: "Informática", Difficulty: "Difícil",
				QuestionCount: 10, TimeLimit: 30 * time.Minute,
				Answered: 4, Correct: 3, Elapsed: 30 * time.Minute, EndReason: "time_expired",
			},
		},
		{
			Sequence:  1,
			Timestamp: ts.Add(-time.Hour),
			QuizSessionData: store.QuizSessionData{
				ID: "s-1", Source: "FGV", Subject: "Português", Difficulty: "Médio",
				QuestionCount: 5, TimeLimit: 10 * time.Minute,
				Answered: 5, Correct: 5, Elapsed: 7 * time.Minute, EndReason: "completed",
			},
		},
	}
}

func load(s *HistoryScreen) {
	s.Update(s.Init()())
}

func TestHistoryScreen_Title(t *testing.T) {
	s := New(&mockSource{})
	if s.Title() != "Histórico" {
		t.Errorf("Title = %q, want %q", s.Title(), "Histórico")
	}
}

func TestHistoryScreen_Loading(t *testing.T) {
	s := New(&mockSource{})
	if !strings.Contains(s.View(100, 30), "Carregando") {
		t.Error("expected loading message before data arrives")
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&mockSource{})
	load(s)
	if !strings.Contains(s.View(100, 30), "Nenhum simulado") {
		t.Error("expected empty message")
	}
}

func TestHistoryScreen_List(t *testing.T) {
	src := &mockSource{sessions: testSessions()}
	s := New(src)
	load(s)

	if src.limit != historyLimit {
		t.Errorf("limit = %d, want %d", src.limit, historyLimit)
	}
	view := s.View(120, 30)
	for _, want := range []string{"Informática", "3/4", "75%", "Português", "100%", "7:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_ExpandDetails(t *testing.T) {
	s := New(&mockSource{sessions: testSessions()})
	load(s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	view := s.View(120, 30)
	if !strings.Contains(view, "Tempo esgotado!") || !strings.Contains(view, "FCC") {
		t.Error("expected details for the first session")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(120, 30), "Simulado concluído!") {
		t.Error("expected details for the second session")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(&mockSource{err: errors.New("database is locked")})
	load(s)
	if !strings.Contains(s.View(100, 30), "database is locked") {
		t.Error("expected error message")
	}
}
