package questiongen

// Question is a generated multiple-choice exam question ready for display.
// It is immutable once returned by a Generator.
type Question struct {
	// ID is unique per generated instance. Two questions with the same
	// statement still get different IDs.
	ID string

	// Source is the exam board whose style the question imitates.
	Source string

	// Subject is the discipline the question belongs to.
	Subject string

	// Difficulty is the requested difficulty label.
	Difficulty string

	// Statement is the question prompt.
	Statement string

	// Options are the answer alternatives, labeled "A".."E".
	Options []Option

	// CorrectOptionID matches the ID of exactly one entry in Options.
	CorrectOptionID string

	// Explanation is shown after the candidate answers.
	Explanation string
}

// Option is one labeled answer alternative.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Option returns the option with the given ID.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// IsCorrect reports whether id is the correct option.
func (q *Question) IsCorrect(id string) bool {
	return id != "" && id == q.CorrectOptionID
}

// GenerateInput holds all context needed to generate a question.
type GenerateInput struct {
	Source     string
	Subject    string
	Difficulty string

	// PriorStatements contains the statements already asked in this quiz.
	// They are listed in the prompt and checked by the dedup validator.
	PriorStatements []string
}
