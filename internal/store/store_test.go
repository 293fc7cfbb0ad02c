package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// A named in-memory database per test keeps shared-cache state isolated.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Driver() == nil {
		t.Fatal("expected non-nil ent driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{tableKV, tableLLMEvents, tableQuizSession, "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestKVGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.KV().Get(context.Background(), "user_performance")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}
}

func TestKVPutGetOverwriteDelete(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	if err := kv.Put(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("value = %s, want {\"a\":2}", got)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error.
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("delete missing: %v", err)
	}
}

func TestLLMEventsAppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, purpose := range []string{"question-gen", "tutor", "question-gen"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "gemini",
			Model:        "gemini-2.5-flash",
			Purpose:      purpose,
			InputTokens:  100 * (i + 1),
			OutputTokens: 10 * (i + 1),
			LatencyMs:    int64(200 * (i + 1)),
			Success:      i != 1,
			RequestBody:  "[user]\nhello",
			ResponseBody: `{"ok":true}`,
			StopReason:   "end",
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("events not newest first: %d, %d", events[0].Sequence, events[1].Sequence)
	}
	if events[1].Success {
		t.Error("expected second newest (tutor) event to be a failure")
	}

	filtered, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen"})
	if err != nil {
		t.Fatalf("query by purpose: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("len(filtered) = %d, want 2", len(filtered))
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected event")
	}
	if e.ResponseBody != `{"ok":true}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	if e.StopReason != "end" {
		t.Errorf("stop reason = %q", e.StopReason)
	}
	if time.Since(e.Timestamp) > time.Minute {
		t.Errorf("timestamp = %v, want recent", e.Timestamp)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing event")
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, d := range []LLMRequestEventData{
		{Model: "m1", Purpose: "tutor", InputTokens: 10, OutputTokens: 1, LatencyMs: 100, Success: true},
		{Model: "m1", Purpose: "tutor", InputTokens: 20, OutputTokens: 2, LatencyMs: 300, Success: true},
		{Model: "m2", Purpose: "question-gen", InputTokens: 5, OutputTokens: 5, LatencyMs: 50, Success: true},
	} {
		if err := repo.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("len(byPurpose) = %d, want 2", len(byPurpose))
	}
	// Ordered by purpose name.
	tutor := byPurpose[1]
	if tutor.Purpose != "tutor" || tutor.Calls != 2 || tutor.InputTokens != 30 || tutor.AvgLatencyMs != 200 {
		t.Errorf("tutor usage = %+v", tutor)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "m1" || byModel[0].OutputTokens != 3 {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestQuizSessions(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, reason := range []string{"completed", "time_expired", "abandoned"} {
		err := repo.AppendQuizSession(ctx, QuizSessionData{
			ID:            "session-" + reason,
			Source:        "FGV",
			Subject:       "Português",
			Difficulty:    "Médio",
			QuestionCount: 5,
			TimeLimit:     5 * time.Minute,
			Answered:      i + 1,
			Correct:       i,
			Elapsed:       90 * time.Second,
			EndReason:     reason,
		})
		if err != nil {
			t.Fatalf("append %s: %v", reason, err)
		}
	}

	sessions, err := repo.RecentQuizSessions(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	got := sessions[0]
	if got.ID != "session-abandoned" {
		t.Errorf("newest session = %q, want session-abandoned", got.ID)
	}
	if got.TimeLimit != 5*time.Minute || got.Elapsed != 90*time.Second {
		t.Errorf("durations = %v / %v", got.TimeLimit, got.Elapsed)
	}
	if got.Subject != "Português" || got.Answered != 3 || got.Correct != 2 {
		t.Errorf("session = %+v", got)
	}
}
