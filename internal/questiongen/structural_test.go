package questiongen

import (
	"strings"
	"testing"
)

func validQuestion() *Question {
	return &Question{
		ID:        "q1",
		Source:    "CESPE",
		Subject:   "Direito Constitucional",
		Statement: "A Constituição Federal de 1988 adota qual forma de governo?",
		Options: []Option{
			{ID: "A", Text: "Monarquia"},
			{ID: "B", Text: "República"},
			{ID: "C", Text: "Parlamentarismo"},
			{ID: "D", Text: "Oligarquia"},
			{ID: "E", Text: "Teocracia"},
		},
		CorrectOptionID: "B",
		Explanation:     "O art. 1º estabelece a República Federativa do Brasil.",
	}
}

func TestStructural_ValidQuestion(t *testing.T) {
	v := &StructuralValidator{}
	if err := v.Validate(validQuestion(), GenerateInput{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestStructural_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(q *Question)
	}{
		{"empty statement", func(q *Question) { q.Statement = "" }},
		{"statement too long", func(q *Question) { q.Statement = strings.Repeat("a", maxStatementLen+1) }},
		{"empty explanation", func(q *Question) { q.Explanation = "" }},
		{"explanation too long", func(q *Question) { q.Explanation = strings.Repeat("é", maxExplanationLen+1) }},
		{"single option", func(q *Question) { q.Options = q.Options[:1] }},
		{"six options", func(q *Question) { q.Options = append(q.Options, Option{ID: "F", Text: "x"}) }},
		{"out of order id", func(q *Question) { q.Options[1].ID = "C" }},
		{"duplicate id", func(q *Question) { q.Options[1].ID = "A" }},
		{"empty option text", func(q *Question) { q.Options[2].Text = "" }},
		{"option too long", func(q *Question) { q.Options[3].Text = strings.Repeat("x", maxOptionLen+1) }},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(q)
			err := v.Validate(q, GenerateInput{})
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Validator != "structural" {
				t.Errorf("validator = %q", err.Validator)
			}
			if !err.Retryable {
				t.Error("expected retryable")
			}
		})
	}
}

func TestStructural_MultibyteLengthCountsRunes(t *testing.T) {
	q := validQuestion()
	// Exactly at the limit in runes, but twice as many bytes.
	q.Statement = strings.Repeat("ã", maxStatementLen)
	if err := (&StructuralValidator{}).Validate(q, GenerateInput{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAnswerKey(t *testing.T) {
	v := &AnswerKeyValidator{}

	if err := v.Validate(validQuestion(), GenerateInput{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	q := validQuestion()
	q.CorrectOptionID = "F"
	if err := v.Validate(q, GenerateInput{}); err == nil || err.Validator != "answer-key" {
		t.Fatalf("expected answer-key error, got %v", err)
	}

	q = validQuestion()
	q.CorrectOptionID = ""
	if err := v.Validate(q, GenerateInput{}); err == nil {
		t.Fatal("expected error for empty key")
	}

	q = validQuestion()
	q.Options[4].Text = " república "
	if err := v.Validate(q, GenerateInput{}); err == nil {
		t.Fatal("expected error for duplicate option text")
	}
}

func TestDedup(t *testing.T) {
	v := &DedupValidator{}
	q := validQuestion()

	if err := v.Validate(q, GenerateInput{PriorStatements: []string{"Outra questão"}}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	prior := "  a constituição federal de 1988   adota qual forma de governo? "
	err := v.Validate(q, GenerateInput{PriorStatements: []string{prior}})
	if err == nil {
		t.Fatal("expected dedup error")
	}
	if err.Validator != "dedup" || !err.Retryable {
		t.Errorf("unexpected error: %+v", err)
	}
}
