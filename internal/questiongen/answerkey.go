package questiongen

import "strings"

// AnswerKeyValidator checks that the answer key names exactly one option
// and that no two alternatives share the same text.
type AnswerKeyValidator struct{}

func (v *AnswerKeyValidator) Name() string { return "answer-key" }

func (v *AnswerKeyValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	matches := 0
	texts := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if o.ID == q.CorrectOptionID {
			matches++
		}
		key := strings.ToLower(strings.TrimSpace(o.Text))
		if texts[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "two options have the same text: " + o.Text,
				Retryable: true,
			}
		}
		texts[key] = true
	}

	if matches != 1 {
		return &ValidationError{
			Validator: v.Name(),
			Message:   "correct_option_id " + q.CorrectOptionID + " does not match exactly one option",
			Retryable: true,
		}
	}
	return nil
}
