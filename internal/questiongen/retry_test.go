package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/abhisek/aprova/internal/llm"
)

func invalidKeyJSON() json.RawMessage {
	return json.RawMessage(`{
		"statement": "Questão sem gabarito válido.",
		"options": [{"id": "A", "text": "Um"}, {"id": "B", "text": "Dois"}],
		"correct_option_id": "D",
		"explanation": "Nenhuma."
	}`)
}

func TestRetrying_RegeneratesOnValidationFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: invalidKeyJSON()},
		llm.MockResponse{Content: validQuestionJSON()},
	)
	gen := NewRetrying(New(mock, DefaultConfig()), 3, nil)

	q, err := gen.Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.CorrectOptionID != "B" {
		t.Errorf("unexpected question: %+v", q)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetrying_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: invalidKeyJSON()},
		llm.MockResponse{Content: invalidKeyJSON()},
		llm.MockResponse{Content: validQuestionJSON()},
	)
	gen := NewRetrying(New(mock, DefaultConfig()), 2, nil)

	_, err := gen.Generate(context.Background(), testInput())
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected wrapped *ValidationError, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetrying_ProviderErrorNotRetried(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Content: validQuestionJSON()},
	)
	gen := NewRetrying(New(mock, DefaultConfig()), 3, nil)

	if _, err := gen.Generate(context.Background(), testInput()); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetrying_NonRetryableStops(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: validQuestionJSON()},
		llm.MockResponse{Content: validQuestionJSON()},
	)
	cfg := Config{Validators: []Validator{nonRetryable{}}}
	gen := NewRetrying(New(mock, cfg), 3, nil)

	if _, err := gen.Generate(context.Background(), testInput()); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

type nonRetryable struct{}

func (nonRetryable) Name() string { return "fatal" }
func (nonRetryable) Validate(*Question, GenerateInput) *ValidationError {
	return &ValidationError{Validator: "fatal", Message: "no", Retryable: false}
}
