package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/aprova/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// recordingRepo captures appended LLM events.
type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLogging_RecordsSuccessfulCall(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, repo, nil)

	ctx := WithPurpose(context.Background(), PurposeQuestionGen)
	_, err := p.Generate(ctx, Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "Gere uma questão."}},
		Schema:   &Schema{Name: "s", Definition: map[string]any{"type": "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "mock" || e.Purpose != PurposeQuestionGen || !e.Success {
		t.Fatalf("event = %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 3 {
		t.Fatalf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	if !strings.Contains(e.RequestBody, "[system]") || !strings.Contains(e.RequestBody, "[schema: s]") {
		t.Fatalf("request body = %q", e.RequestBody)
	}
	if e.ResponseBody != `{"ok":true}` {
		t.Fatalf("response body = %q", e.ResponseBody)
	}
	if e.StopReason != StopEnd {
		t.Fatalf("stop reason = %q, want %q", e.StopReason, StopEnd)
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, repo, nil)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("events = %+v", repo.events)
	}
}

func TestLogging_RepoFailureIsWarnedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(TextResponse("oi"))
	p := WithLogging(mock, repo, zap.New(core))

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "oi" {
		t.Fatalf("text = %q", resp.Text())
	}
	if logs.FilterMessage("failed to log LLM request event").Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}
}

func TestLogging_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(TextResponse("ok")), nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
