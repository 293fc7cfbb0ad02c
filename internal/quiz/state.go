package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/aprova/internal/questiongen"
)

// Phase represents the current phase of a quiz session.
type Phase int

const (
	PhaseIdle        Phase = iota // No session, nothing configured
	PhaseConfiguring              // Configuration editable, waiting for Start
	PhaseLoading                  // A blocking question fetch is outstanding
	PhaseActive                   // Question shown, waiting for an answer
	PhaseReviewing                // Answer revealed with the explanation
	PhaseGameOver                 // Session ended, summary available
)

var phaseNames = [...]string{"idle", "configuring", "loading", "active", "reviewing", "game_over"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// EndReason records why a session stopped.
type EndReason string

const (
	EndCompleted   EndReason = "completed"
	EndTimeExpired EndReason = "time_expired"
	EndAbandoned   EndReason = "abandoned"
)

// Config is the user-editable session setup.
type Config struct {
	Source        string        `json:"source"`
	Subject       string        `json:"subject"`
	Difficulty    string        `json:"difficulty"`
	QuestionCount int           `json:"questionCount"`
	TimeLimit     time.Duration `json:"timeLimit"`
}

// Validate checks the bounds required to start a session.
func (c Config) Validate() error {
	if c.QuestionCount < 1 {
		return fmt.Errorf("%w: question count must be at least 1, got %d", ErrInvalidConfig, c.QuestionCount)
	}
	if c.TimeLimit < time.Second {
		return fmt.Errorf("%w: time limit must be at least 1s, got %s", ErrInvalidConfig, c.TimeLimit)
	}
	return nil
}

// Summary is the final tally exposed in GameOver.
type Summary struct {
	SessionID          string        `json:"sessionId"`
	Answered           int           `json:"answered"`
	Correct            int           `json:"correct"`
	Elapsed            time.Duration `json:"elapsed"`
	AveragePerQuestion time.Duration `json:"averagePerQuestion"`
	EndReason          EndReason     `json:"endReason"`
}

// Accuracy returns correct / answered, or 0 when nothing was answered.
func (s Summary) Accuracy() float64 {
	if s.Answered == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answered)
}

func buildSummary(id string, answered, correct int, elapsed time.Duration, reason EndReason) Summary {
	s := Summary{
		SessionID: id,
		Answered:  answered,
		Correct:   correct,
		Elapsed:   elapsed,
		EndReason: reason,
	}
	if answered > 0 {
		s.AveragePerQuestion = elapsed / time.Duration(answered)
	}
	return s
}

// Snapshot is a point-in-time copy of the engine state for rendering.
type Snapshot struct {
	Phase     Phase
	Config    Config
	SessionID string

	// Question is the current question, nil outside Active/Reviewing.
	Question *questiongen.Question

	// Selected is the chosen option ID while Reviewing.
	Selected string

	Answered  int
	Correct   int
	Remaining time.Duration

	// Prefetching is true while the one-ahead fetch is in flight.
	Prefetching bool

	// PrefetchReady is true when the next question is already held.
	PrefetchReady bool

	// Summary is set in GameOver.
	Summary *Summary

	// Err is the last generation failure, cleared on the next success.
	Err error
}

// AnswerResult is returned by Answer for immediate feedback.
type AnswerResult struct {
	Correct         bool
	Selected        string
	CorrectOptionID string
	Explanation     string
}

var (
	// ErrInvalidTransition is returned when an operation is not valid in
	// the current phase.
	ErrInvalidTransition = errors.New("quiz: invalid transition")

	// ErrAlreadyAnswered is returned when answering a question twice.
	ErrAlreadyAnswered = errors.New("quiz: question already answered")

	// ErrUnknownOption is returned for an option ID not on the question.
	ErrUnknownOption = errors.New("quiz: unknown option")

	// ErrInvalidConfig is returned by Start for out-of-range settings.
	ErrInvalidConfig = errors.New("quiz: invalid config")

	// ErrInvalidQuestion marks a generated question whose answer key does
	// not name one of its options.
	ErrInvalidQuestion = errors.New("quiz: correct option not among options")

	// ErrSuperseded is returned when the session ended or was reset while
	// the call was waiting for a question.
	ErrSuperseded = errors.New("quiz: session ended while waiting")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("quiz: engine closed")
)

// GenerationError wraps a failed question fetch. Stage is "start" or
// "advance".
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("could not generate question (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
