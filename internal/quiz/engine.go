package quiz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder receives every answered question. performance.Tracker
// satisfies it.
type Recorder interface {
	Record(ctx context.Context, correct bool, subject string)
}

// History persists finished sessions. store.EventRepo satisfies it.
type History interface {
	AppendQuizSession(ctx context.Context, data store.QuizSessionData) error
}

// Options holds the engine's optional collaborators.
type Options struct {
	Recorder Recorder
	History  History
	Logger   *zap.Logger

	// Now overrides the wall clock used for elapsed time.
	Now func() time.Time
}

// Engine runs one timed quiz at a time. It fetches the first question
// synchronously, keeps at most one question prefetched, and ends the
// session when the countdown reaches zero.
//
// The engine has no internal ticker. The owner calls Tick once per second
// (the TUI through tea.Tick, the server through RunClock).
type Engine struct {
	gen      questiongen.Generator
	recorder Recorder
	history  History
	logger   *zap.Logger
	now      func() time.Time
	changes  chan struct{}

	mu     sync.Mutex
	phase  Phase
	cfg    Config
	closed bool

	sessionID  string
	inSession  bool
	startedAt  time.Time
	current    *questiongen.Question
	selected   string
	prefetched *questiongen.Question
	// prefetchDone is non-nil while a prefetch is in flight and is closed
	// when it settles.
	prefetchDone chan struct{}
	prior        []string

	answered     int
	correct      int
	remaining    time.Duration
	timerRunning bool

	// epoch invalidates in-flight fetches when a session ends or resets.
	epoch   uint64
	sessCtx context.Context
	cancel  context.CancelFunc

	summary *Summary
	lastErr error
}

// NewEngine creates an idle engine drawing questions from gen.
func NewEngine(gen questiongen.Generator, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		gen:      gen,
		recorder: opts.Recorder,
		history:  opts.History,
		logger:   opts.Logger,
		now:      opts.Now,
		changes:  make(chan struct{}, 1),
		sessCtx:  context.Background(),
	}
}

// Changes signals after every state change. Signals coalesce; read
// Snapshot after receiving one.
func (e *Engine) Changes() <-chan struct{} {
	return e.changes
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Phase:         e.phase,
		Config:        e.cfg,
		SessionID:     e.sessionID,
		Question:      e.current,
		Selected:      e.selected,
		Answered:      e.answered,
		Correct:       e.correct,
		Remaining:     e.remaining,
		Prefetching:   e.prefetchDone != nil,
		PrefetchReady: e.prefetched != nil,
		Err:           e.lastErr,
	}
	if e.summary != nil {
		sum := *e.summary
		s.Summary = &sum
	}
	return s
}

// Configure sets up the next session. Valid from Idle, Configuring and
// GameOver.
func (e *Engine) Configure(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	switch e.phase {
	case PhaseIdle, PhaseConfiguring, PhaseGameOver:
	default:
		return fmt.Errorf("%w: configure while %s", ErrInvalidTransition, e.phase)
	}
	e.cfg = cfg
	e.phase = PhaseConfiguring
	e.summary = nil
	e.lastErr = nil
	e.notify()
	return nil
}

// Start begins a session with the configured settings. It blocks until
// the first question arrives. On failure the engine returns to
// Configuring with a *GenerationError.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.phase != PhaseConfiguring {
		phase := e.phase
		e.mu.Unlock()
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, phase)
	}
	if err := e.cfg.Validate(); err != nil {
		e.mu.Unlock()
		return err
	}

	e.epoch++
	e.sessCtx, e.cancel = context.WithCancel(context.Background())
	e.sessionID = uuid.NewString()
	e.answered, e.correct = 0, 0
	e.remaining = e.cfg.TimeLimit
	e.prior = nil
	e.current, e.prefetched, e.selected = nil, nil, ""
	e.summary, e.lastErr = nil, nil
	e.phase = PhaseLoading

	epoch := e.epoch
	input := e.inputLocked()
	sessCtx := e.sessCtx
	e.notify()
	e.mu.Unlock()

	q, err := e.generate(ctx, sessCtx, input)

	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch {
		return ErrSuperseded
	}
	if err != nil {
		e.cancel()
		e.phase = PhaseConfiguring
		gerr := &GenerationError{Stage: "start", Err: err}
		e.lastErr = gerr
		e.notify()
		return gerr
	}

	e.inSession = true
	e.startedAt = e.now()
	e.timerRunning = true
	e.promoteLocked(q)
	if e.cfg.QuestionCount > 1 {
		e.startPrefetchLocked()
	}
	e.logger.Debug("quiz started",
		zap.String("session_id", e.sessionID),
		zap.String("subject", e.cfg.Subject),
		zap.Int("question_count", e.cfg.QuestionCount),
		zap.Duration("time_limit", e.cfg.TimeLimit),
	)
	e.notify()
	return nil
}

// Answer records the selection for the current question and reveals the
// answer. Only one answer per question is accepted.
func (e *Engine) Answer(ctx context.Context, optionID string) (AnswerResult, error) {
	e.mu.Lock()
	switch e.phase {
	case PhaseActive:
	case PhaseReviewing:
		e.mu.Unlock()
		return AnswerResult{}, ErrAlreadyAnswered
	default:
		phase := e.phase
		e.mu.Unlock()
		return AnswerResult{}, fmt.Errorf("%w: answer while %s", ErrInvalidTransition, phase)
	}

	id := strings.ToUpper(strings.TrimSpace(optionID))
	q := e.current
	if _, ok := q.Option(id); !ok {
		e.mu.Unlock()
		return AnswerResult{}, fmt.Errorf("%w: %q", ErrUnknownOption, optionID)
	}

	correct := q.IsCorrect(id)
	e.selected = id
	e.answered++
	if correct {
		e.correct++
	}
	e.phase = PhaseReviewing
	subject := e.cfg.Subject
	if subject == "" {
		subject = q.Subject
	}
	rec := e.recorder
	e.notify()
	e.mu.Unlock()

	if rec != nil {
		rec.Record(ctx, correct, subject)
	}

	return AnswerResult{
		Correct:         correct,
		Selected:        id,
		CorrectOptionID: q.CorrectOptionID,
		Explanation:     q.Explanation,
	}, nil
}

// Advance leaves Reviewing. After the last question it ends the session.
// Otherwise it shows the prefetched question, waiting for an in-flight
// prefetch or fetching synchronously when none is held. A failed fetch
// returns to Reviewing with a *GenerationError so the caller can retry.
func (e *Engine) Advance(ctx context.Context) error {
	e.mu.Lock()
	if e.phase != PhaseReviewing {
		phase := e.phase
		e.mu.Unlock()
		return fmt.Errorf("%w: advance while %s", ErrInvalidTransition, phase)
	}

	if e.answered >= e.cfg.QuestionCount {
		data := e.endLocked(EndCompleted)
		e.phase = PhaseGameOver
		e.notify()
		e.mu.Unlock()
		e.persist(data)
		return nil
	}

	epoch := e.epoch
	for {
		if q := e.prefetched; q != nil {
			e.prefetched = nil
			e.promoteLocked(q)
			if e.answered+1 < e.cfg.QuestionCount {
				e.startPrefetchLocked()
			}
			e.notify()
			e.mu.Unlock()
			return nil
		}

		if done := e.prefetchDone; done != nil {
			e.phase = PhaseLoading
			e.notify()
			e.mu.Unlock()

			select {
			case <-done:
			case <-ctx.Done():
				e.mu.Lock()
				if epoch == e.epoch && e.phase == PhaseLoading {
					e.phase = PhaseReviewing
					e.notify()
				}
				e.mu.Unlock()
				return ctx.Err()
			}

			e.mu.Lock()
			if epoch != e.epoch {
				e.mu.Unlock()
				return ErrSuperseded
			}
			continue
		}

		e.phase = PhaseLoading
		input := e.inputLocked()
		sessCtx := e.sessCtx
		e.notify()
		e.mu.Unlock()

		q, err := e.generate(ctx, sessCtx, input)

		e.mu.Lock()
		if epoch != e.epoch {
			e.mu.Unlock()
			return ErrSuperseded
		}
		if err != nil {
			e.phase = PhaseReviewing
			gerr := &GenerationError{Stage: "advance", Err: err}
			e.lastErr = gerr
			e.notify()
			e.mu.Unlock()
			return gerr
		}
		e.prefetched = q
	}
}

// Tick counts down one second. When the countdown reaches zero the
// session ends immediately, whatever question is pending. Tick reports
// whether the countdown is still running.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	if !e.timerRunning {
		e.mu.Unlock()
		return false
	}

	e.remaining -= time.Second
	if e.remaining > 0 {
		e.notify()
		e.mu.Unlock()
		return true
	}

	e.remaining = 0
	data := e.endLocked(EndTimeExpired)
	e.phase = PhaseGameOver
	e.notify()
	e.mu.Unlock()

	e.persist(data)
	return false
}

// RunClock ticks once per second until the countdown stops or ctx is
// done. Call it after a successful Start.
func (e *Engine) RunClock(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !e.Tick() {
				return
			}
		}
	}
}

// Acknowledge dismisses the summary and returns to Configuring with the
// previous settings.
func (e *Engine) Acknowledge() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseGameOver {
		return fmt.Errorf("%w: acknowledge while %s", ErrInvalidTransition, e.phase)
	}
	e.phase = PhaseConfiguring
	e.summary = nil
	e.notify()
	return nil
}

// Reset abandons any session and returns to Idle. In-flight fetches are
// discarded and the countdown stops.
func (e *Engine) Reset() {
	e.mu.Lock()
	var data *store.QuizSessionData
	if e.inSession {
		data = e.endLocked(EndAbandoned)
	} else {
		e.teardownLocked()
	}
	e.phase = PhaseIdle
	e.summary = nil
	e.lastErr = nil
	e.notify()
	e.mu.Unlock()

	e.persist(data)
}

// Close resets the engine and rejects further sessions.
func (e *Engine) Close() {
	e.Reset()

	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

// promoteLocked makes q the current question.
func (e *Engine) promoteLocked(q *questiongen.Question) {
	e.current = q
	e.selected = ""
	e.prior = append(e.prior, q.Statement)
	e.lastErr = nil
	e.phase = PhaseActive
}

// startPrefetchLocked issues the one-ahead fetch unless one is already in
// flight or held.
func (e *Engine) startPrefetchLocked() {
	if e.prefetchDone != nil || e.prefetched != nil {
		return
	}

	done := make(chan struct{})
	e.prefetchDone = done
	epoch := e.epoch
	input := e.inputLocked()
	sessCtx := e.sessCtx

	go func() {
		defer close(done)

		q, err := e.generate(sessCtx, sessCtx, input)

		e.mu.Lock()
		defer e.mu.Unlock()

		if epoch != e.epoch {
			return
		}
		e.prefetchDone = nil
		if err != nil {
			e.logger.Warn("prefetch failed", zap.String("session_id", e.sessionID), zap.Error(err))
			return
		}
		e.prefetched = q
		e.notify()
	}()
}

// endLocked stops the countdown, discards pending questions and builds
// the summary. It returns the history row to persist after unlocking.
func (e *Engine) endLocked(reason EndReason) *store.QuizSessionData {
	elapsed := e.cfg.TimeLimit
	if reason != EndTimeExpired {
		elapsed = e.now().Sub(e.startedAt)
		elapsed = max(0, min(elapsed, e.cfg.TimeLimit))
	}

	sum := buildSummary(e.sessionID, e.answered, e.correct, elapsed, reason)
	e.summary = &sum
	e.teardownLocked()
	e.inSession = false

	e.logger.Info("quiz finished",
		zap.String("session_id", sum.SessionID),
		zap.String("reason", string(reason)),
		zap.Int("answered", sum.Answered),
		zap.Int("correct", sum.Correct),
		zap.Duration("elapsed", sum.Elapsed),
	)

	return &store.QuizSessionData{
		ID:            sum.SessionID,
		Source:        e.cfg.Source,
		Subject:       e.cfg.Subject,
		Difficulty:    e.cfg.Difficulty,
		QuestionCount: e.cfg.QuestionCount,
		TimeLimit:     e.cfg.TimeLimit,
		Answered:      sum.Answered,
		Correct:       sum.Correct,
		Elapsed:       sum.Elapsed,
		EndReason:     string(reason),
	}
}

func (e *Engine) teardownLocked() {
	e.timerRunning = false
	e.current, e.prefetched, e.selected = nil, nil, ""
	e.prefetchDone = nil
	e.epoch++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) inputLocked() questiongen.GenerateInput {
	return questiongen.GenerateInput{
		Source:          e.cfg.Source,
		Subject:         e.cfg.Subject,
		Difficulty:      e.cfg.Difficulty,
		PriorStatements: append([]string(nil), e.prior...),
	}
}

// generate calls the generator bounded by both ctx and the session, and
// rejects questions whose answer key names no option.
func (e *Engine) generate(ctx, sessCtx context.Context, input questiongen.GenerateInput) (*questiongen.Question, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(sessCtx, cancel)
	defer stop()

	q, err := e.gen.Generate(ctx, input)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("generator returned no question")
	}
	if _, ok := q.Option(q.CorrectOptionID); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuestion, q.CorrectOptionID)
	}
	return q, nil
}

func (e *Engine) persist(data *store.QuizSessionData) {
	if data == nil || e.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.history.AppendQuizSession(ctx, *data); err != nil {
		e.logger.Warn("failed to record quiz session", zap.String("session_id", data.ID), zap.Error(err))
	}
}

func (e *Engine) notify() {
	select {
	case e.changes <- struct{}{}:
	default:
	}
}
