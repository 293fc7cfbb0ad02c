package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/router"
	"github.com/abhisek/aprova/internal/screen"
	"github.com/abhisek/aprova/internal/screens/dashboard"
	"github.com/abhisek/aprova/internal/screens/placeholder"
)

type stubPerformance struct {
	rec performance.Record
}

func (s *stubPerformance) Snapshot() performance.Record { return s.rec.Clone() }
func (s *stubPerformance) Reset(context.Context) error  { return nil }

func selectItem(t *testing.T, h *HomeScreen, index int) screen.Screen {
	t.Helper()
	for i := 0; i < index; i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	return push.Screen
}

func TestHomeScreen_MissingDepsOpenPlaceholder(t *testing.T) {
	for i, title := range []string{"Simulado", "Desempenho", "Tutor", "Notícias", "Histórico"} {
		s := selectItem(t, New(Deps{}), i)
		p, ok := s.(*placeholder.PlaceholderScreen)
		if !ok {
			t.Fatalf("item %d: expected placeholder, got %T", i, s)
		}
		if p.Title() != title {
			t.Errorf("item %d: title = %q, want %q", i, p.Title(), title)
		}
	}
}

func TestHomeScreen_OpensDashboard(t *testing.T) {
	h := New(Deps{Performance: &stubPerformance{rec: performance.New()}})
	if _, ok := selectItem(t, h, 1).(*dashboard.DashboardScreen); !ok {
		t.Error("expected dashboard screen")
	}
}

func TestHomeScreen_QuitItem(t *testing.T) {
	h := New(Deps{})
	for i := 0; i < 5; i++ {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestHomeScreen_ViewShowsStatsAndBanner(t *testing.T) {
	rec := performance.New()
	for i := 0; i < 4; i++ {
		rec.Apply(i == 0, "Informática")
		rec.Apply(i != 3, "Português")
	}
	h := New(Deps{Performance: &stubPerformance{rec: rec}})

	view := h.View(120, 40)
	for _, want := range []string{"50%", "8 QUESTÕES", "REVISAR INFORMÁTICA", "GEMINI_API_KEY", "SIMULADO"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestWeakestSubject(t *testing.T) {
	rec := performance.New()
	rec.Apply(false, "Português")
	rec.Apply(false, "Português")
	if _, ok := weakestSubject(rec); ok {
		t.Error("expected no suggestion below the answer threshold")
	}

	for i := 0; i < 3; i++ {
		rec.Apply(true, "Raciocínio Lógico")
	}
	rec.Apply(true, "Português")
	got, ok := weakestSubject(rec)
	if !ok || got != "Português" {
		t.Errorf("weakestSubject = %q, %v; want Português", got, ok)
	}
}
