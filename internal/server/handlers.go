package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/aprova/internal/grounding"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/tutor"
	"go.uber.org/zap"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
	maxImageBody        = 10 << 20
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type catalogResponse struct {
	Sources      []string `json:"sources"`
	Subjects     []string `json:"subjects"`
	Difficulties []string `json:"difficulties"`
}

func (s *Server) catalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Sources:      questiongen.Sources,
		Subjects:     questiongen.Subjects,
		Difficulties: questiongen.Difficulties,
	})
}

type subjectResponse struct {
	Subject  string  `json:"subject"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type performanceResponse struct {
	TotalAnswered  int               `json:"totalAnswered"`
	CorrectAnswers int               `json:"correctAnswers"`
	Accuracy       float64           `json:"accuracy"`
	Subjects       []subjectResponse `json:"subjects"`
}

func (s *Server) getPerformance(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Performance == nil {
		unavailable(w, "performance record")
		return
	}
	rec := s.deps.Performance.Snapshot()
	resp := performanceResponse{
		TotalAnswered:  rec.TotalAnswered,
		CorrectAnswers: rec.CorrectAnswers,
		Accuracy:       rec.Accuracy(),
		Subjects:       []subjectResponse{},
	}
	for _, row := range rec.Breakdown(questiongen.Subjects) {
		resp.Subjects = append(resp.Subjects, subjectResponse{
			Subject:  row.Subject,
			Total:    row.Total,
			Correct:  row.Correct,
			Accuracy: row.Accuracy(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resetPerformance(w http.ResponseWriter, r *http.Request) {
	if s.deps.Performance == nil {
		unavailable(w, "performance record")
		return
	}
	if err := s.deps.Performance.Reset(r.Context()); err != nil {
		s.logger.Error("reset performance", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to reset performance")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Source           string    `json:"source"`
	Subject          string    `json:"subject"`
	Difficulty       string    `json:"difficulty"`
	QuestionCount    int       `json:"questionCount"`
	TimeLimitSeconds int       `json:"timeLimitSeconds"`
	Answered         int       `json:"answered"`
	Correct          int       `json:"correct"`
	ElapsedSeconds   float64   `json:"elapsedSeconds"`
	EndReason        string    `json:"endReason"`
}

func (s *Server) sessions(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		unavailable(w, "quiz history")
		return
	}
	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSessionLimit)
	}

	rows, err := s.deps.History.RecentQuizSessions(r.Context(), limit)
	if err != nil {
		s.logger.Error("query quiz sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load sessions")
		return
	}
	out := make([]sessionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, sessionResponse{
			ID:               row.ID,
			Timestamp:        row.Timestamp,
			Source:           row.Source,
			Subject:          row.Subject,
			Difficulty:       row.Difficulty,
			QuestionCount:    row.QuestionCount,
			TimeLimitSeconds: int(row.TimeLimit / time.Second),
			Answered:         row.Answered,
			Correct:          row.Correct,
			ElapsedSeconds:   row.Elapsed.Seconds(),
			EndReason:        row.EndReason,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type tutorRequest struct {
	Message string `json:"message"`
}

type tutorResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) askTutor(w http.ResponseWriter, r *http.Request) {
	if s.deps.Tutor == nil {
		unavailable(w, "tutor")
		return
	}
	var req tutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, err := s.deps.Tutor.Ask(r.Context(), req.Message)
	if errors.Is(err, tutor.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		s.logger.Warn("tutor failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "tutor unavailable")
		return
	}
	writeJSON(w, http.StatusOK, tutorResponse{Reply: reply})
}

func (s *Server) resetTutor(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Tutor == nil {
		unavailable(w, "tutor")
		return
	}
	s.deps.Tutor.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) news(w http.ResponseWriter, r *http.Request) {
	if s.deps.Grounding == nil {
		unavailable(w, "grounding")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	res, err := s.deps.Grounding.News(r.Context(), q)
	if err != nil {
		s.upstreamError(w, "news", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) places(w http.ResponseWriter, r *http.Request) {
	if s.deps.Grounding == nil {
		unavailable(w, "grounding")
		return
	}
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng must be numbers")
		return
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, "lat must be in [-90, 90] and lng in [-180, 180]")
		return
	}
	res, err := s.deps.Grounding.Places(r.Context(), lat, lng)
	if err != nil {
		s.upstreamError(w, "places", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type imageEditRequest struct {
	Image  string `json:"image"` // data URL
	Prompt string `json:"prompt"`
}

type imageEditResponse struct {
	MIMEType string `json:"mimeType"`
	DataURL  string `json:"dataUrl"`
}

func (s *Server) editImage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Grounding == nil {
		unavailable(w, "grounding")
		return
	}
	var req imageEditRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImageBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}
	mimeType, data, err := grounding.ParseDataURL(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image: "+err.Error())
		return
	}
	res, err := s.deps.Grounding.EditImage(r.Context(), data, mimeType, req.Prompt)
	if err != nil {
		s.upstreamError(w, "image edit", err)
		return
	}
	writeJSON(w, http.StatusOK, imageEditResponse{MIMEType: res.MIMEType, DataURL: res.DataURL()})
}

func (s *Server) upstreamError(w http.ResponseWriter, op string, err error) {
	s.logger.Warn("grounding failed", zap.String("op", op), zap.Error(err))
	if errors.Is(err, grounding.ErrEmptyResponse) {
		writeError(w, http.StatusBadGateway, op+": empty response from model")
		return
	}
	writeError(w, http.StatusBadGateway, op+" unavailable")
}
