package questiongen

import (
	"fmt"
	"strings"
)

// DedupValidator rejects a statement already asked in this quiz.
// Comparison ignores case and whitespace runs.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	stmt := normalizeStatement(q.Statement)
	for _, prior := range input.PriorStatements {
		if normalizeStatement(prior) == stmt {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "statement repeats a question already asked",
				Retryable: true,
			}
		}
	}
	return nil
}

func normalizeStatement(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// buildDedup formats prior statements for the prompt, respecting the max limit.
// Returns "Nenhuma" if there are no prior statements.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "Nenhuma"
	}

	// Keep only the most recent N statements.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
