package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
	"go.uber.org/zap"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type wireConfig struct {
	Source           string `json:"source"`
	Subject          string `json:"subject"`
	Difficulty       string `json:"difficulty"`
	QuestionCount    int    `json:"questionCount"`
	TimeLimitSeconds int    `json:"timeLimitSeconds"`
}

func (c wireConfig) quiz() quiz.Config {
	return quiz.Config{
		Source:        c.Source,
		Subject:       c.Subject,
		Difficulty:    c.Difficulty,
		QuestionCount: c.QuestionCount,
		TimeLimit:     time.Duration(c.TimeLimitSeconds) * time.Second,
	}
}

func toWireConfig(c quiz.Config) wireConfig {
	return wireConfig{
		Source:           c.Source,
		Subject:          c.Subject,
		Difficulty:       c.Difficulty,
		QuestionCount:    c.QuestionCount,
		TimeLimitSeconds: int(c.TimeLimit / time.Second),
	}
}

type startPayload struct {
	Config wireConfig `json:"config"`
}

type answerPayload struct {
	OptionID string `json:"optionId"`
}

type wireQuestion struct {
	ID              string               `json:"id"`
	Source          string               `json:"source"`
	Subject         string               `json:"subject"`
	Difficulty      string               `json:"difficulty"`
	Statement       string               `json:"statement"`
	Options         []questiongen.Option `json:"options"`
	CorrectOptionID string               `json:"correctOptionId,omitempty"`
	Explanation     string               `json:"explanation,omitempty"`
}

type statePayload struct {
	Phase            quiz.Phase    `json:"phase"`
	SessionID        string        `json:"sessionId,omitempty"`
	Config           wireConfig    `json:"config"`
	Question         *wireQuestion `json:"question,omitempty"`
	Selected         string        `json:"selected,omitempty"`
	Answered         int           `json:"answered"`
	Correct          int           `json:"correct"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Prefetching      bool          `json:"prefetching"`
	PrefetchReady    bool          `json:"prefetchReady"`
	Error            string        `json:"error,omitempty"`
}

type answerResultPayload struct {
	Correct         bool   `json:"correct"`
	Selected        string `json:"selected"`
	CorrectOptionID string `json:"correctOptionId"`
	Explanation     string `json:"explanation"`
}

type summaryPayload struct {
	SessionID      string         `json:"sessionId"`
	Answered       int            `json:"answered"`
	Correct        int            `json:"correct"`
	Accuracy       float64        `json:"accuracy"`
	ElapsedSeconds float64        `json:"elapsedSeconds"`
	AverageSeconds float64        `json:"averageSeconds"`
	EndReason      quiz.EndReason `json:"endReason"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// stateMessage converts a snapshot for the wire. The answer key is only
// included once the question has been answered.
func stateMessage(s quiz.Snapshot) statePayload {
	out := statePayload{
		Phase:            s.Phase,
		SessionID:        s.SessionID,
		Config:           toWireConfig(s.Config),
		Selected:         s.Selected,
		Answered:         s.Answered,
		Correct:          s.Correct,
		RemainingSeconds: int(s.Remaining / time.Second),
		Prefetching:      s.Prefetching,
		PrefetchReady:    s.PrefetchReady,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	if q := s.Question; q != nil {
		wq := &wireQuestion{
			ID:         q.ID,
			Source:     q.Source,
			Subject:    q.Subject,
			Difficulty: q.Difficulty,
			Statement:  q.Statement,
			Options:    q.Options,
		}
		if s.Phase == quiz.PhaseReviewing || s.Phase == quiz.PhaseGameOver {
			wq.CorrectOptionID = q.CorrectOptionID
			wq.Explanation = q.Explanation
		}
		out.Question = wq
	}
	return out
}

func summaryMessage(s *quiz.Summary) summaryPayload {
	return summaryPayload{
		SessionID:      s.SessionID,
		Answered:       s.Answered,
		Correct:        s.Correct,
		Accuracy:       s.Accuracy(),
		ElapsedSeconds: s.Elapsed.Seconds(),
		AverageSeconds: s.AveragePerQuestion.Seconds(),
		EndReason:      s.EndReason,
	}
}

// serveQuiz runs one quiz engine per connection. Commands that wait on
// question generation run in their own goroutine so the reader stays
// responsive; every engine change is pushed as a state message.
func (s *Server) serveQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		unavailable(w, "question generator")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	opts := quiz.Options{Logger: s.logger}
	if s.deps.Performance != nil {
		opts.Recorder = s.deps.Performance
	}
	if s.deps.History != nil {
		opts.History = s.deps.History
	}
	eng := quiz.NewEngine(s.deps.Generator, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	var workers sync.WaitGroup

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage{Type: typ, Payload: payload}:
		case <-closeSignals:
		}
	}
	emitErr := func(err error) {
		emit("error", errorPayload{Message: err.Error()})
	}

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("ws write error", zap.Error(err))
				_ = conn.Close()
				for range send {
				}
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		var lastSummary string
		for {
			select {
			case <-eng.Changes():
				snap := eng.Snapshot()
				emit("state", stateMessage(snap))
				if snap.Summary != nil && snap.Summary.SessionID != lastSummary {
					lastSummary = snap.Summary.SessionID
					emit("summary", summaryMessage(snap.Summary))
				}
			case <-closeSignals:
				return
			}
		}
	}()

	emit("state", stateMessage(eng.Snapshot()))

	background := func(fn func()) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			fn()
		}()
	}

	for {
		var in inboundMessage
		if err := conn.ReadJSON(&in); err != nil {
			break
		}
		switch in.Type {
		case "start":
			var p startPayload
			if err := json.Unmarshal(in.Payload, &p); err != nil {
				emitErr(errors.New("invalid start payload"))
				continue
			}
			if err := eng.Configure(p.Config.quiz()); err != nil {
				emitErr(err)
				continue
			}
			background(func() {
				if err := eng.Start(ctx); err != nil {
					if !errors.Is(err, quiz.ErrSuperseded) {
						emitErr(err)
					}
					return
				}
				eng.RunClock(ctx)
			})
		case "answer":
			var p answerPayload
			if err := json.Unmarshal(in.Payload, &p); err != nil {
				emitErr(errors.New("invalid answer payload"))
				continue
			}
			res, err := eng.Answer(ctx, p.OptionID)
			if err != nil {
				emitErr(err)
				continue
			}
			emit("answerResult", answerResultPayload{
				Correct:         res.Correct,
				Selected:        res.Selected,
				CorrectOptionID: res.CorrectOptionID,
				Explanation:     res.Explanation,
			})
		case "advance":
			background(func() {
				if err := eng.Advance(ctx); err != nil && !errors.Is(err, quiz.ErrSuperseded) && !errors.Is(err, context.Canceled) {
					emitErr(err)
				}
			})
		case "acknowledge":
			if err := eng.Acknowledge(); err != nil {
				emitErr(err)
			}
		default:
			emitErr(errors.New("unsupported message type"))
		}
	}

	cancel()
	eng.Close()
	close(closeSignals)
	workers.Wait()
	<-updatesDone
	close(send)
	<-writerDone
}
