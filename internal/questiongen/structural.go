package questiongen

import (
	"fmt"
	"unicode/utf8"
)

const (
	maxStatementLen   = 2000
	maxOptionLen      = 500
	maxExplanationLen = 2000
	minOptions        = 2
	maxOptions        = 5
)

// StructuralValidator checks that required fields are present, within
// length limits, and that option IDs are well formed and unique.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf(format, args...),
			Retryable: true,
		}
	}

	if q.Statement == "" {
		return fail("statement is empty")
	}
	if utf8.RuneCountInString(q.Statement) > maxStatementLen {
		return fail("statement exceeds %d characters", maxStatementLen)
	}
	if q.Explanation == "" {
		return fail("explanation is empty")
	}
	if utf8.RuneCountInString(q.Explanation) > maxExplanationLen {
		return fail("explanation exceeds %d characters", maxExplanationLen)
	}
	if len(q.Options) < minOptions || len(q.Options) > maxOptions {
		return fail("expected %d to %d options, got %d", minOptions, maxOptions, len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	for i, o := range q.Options {
		if o.ID != OptionIDs[i] {
			return fail("option %d has id %q, want %q", i+1, o.ID, OptionIDs[i])
		}
		if seen[o.ID] {
			return fail("duplicate option id %q", o.ID)
		}
		seen[o.ID] = true
		if o.Text == "" {
			return fail("option %s is empty", o.ID)
		}
		if utf8.RuneCountInString(o.Text) > maxOptionLen {
			return fail("option %s exceeds %d characters", o.ID, maxOptionLen)
		}
	}
	return nil
}
