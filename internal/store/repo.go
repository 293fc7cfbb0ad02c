package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key has no entry.
var ErrNotFound = errors.New("store: not found")

// KV is a minimal string-keyed blob store. The performance record lives
// under a single key.
type KV interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put creates or replaces the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	From    time.Time // timestamp >= From
	Purpose string    // exact purpose match
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	StopReason   string // normalized; empty for failed calls
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// QuizSessionData is the persisted outcome of one timed quiz.
type QuizSessionData struct {
	ID            string
	Source        string
	Subject       string
	Difficulty    string
	QuestionCount int
	TimeLimit     time.Duration
	Answered      int
	Correct       int
	Elapsed       time.Duration
	EndReason     string
}

// QuizSession is a stored quiz session row.
type QuizSession struct {
	Sequence  int64
	Timestamp time.Time
	QuizSessionData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendQuizSession records a finished or abandoned quiz.
	AppendQuizSession(ctx context.Context, data QuizSessionData) error

	// RecentQuizSessions returns up to limit sessions, newest first.
	RecentQuizSessions(ctx context.Context, limit int) ([]QuizSession, error)
}
