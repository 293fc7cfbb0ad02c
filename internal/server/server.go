// Package server exposes aprova over HTTP: REST endpoints for the study
// tools and a websocket that runs a timed quiz per connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/aprova/internal/grounding"
	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/store"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Performance is the shared performance record.
type Performance interface {
	Record(ctx context.Context, correct bool, subject string)
	Snapshot() performance.Record
	Reset(ctx context.Context) error
}

// History stores finished quiz sessions.
type History interface {
	AppendQuizSession(ctx context.Context, data store.QuizSessionData) error
	RecentQuizSessions(ctx context.Context, limit int) ([]store.QuizSession, error)
}

// Tutor is a text chat tutor.
type Tutor interface {
	Ask(ctx context.Context, message string) (string, error)
	Reset()
}

// Grounding answers news, places and image edit requests.
type Grounding interface {
	News(ctx context.Context, query string) (*grounding.NewsResult, error)
	Places(ctx context.Context, lat, lng float64) (*grounding.PlacesResult, error)
	EditImage(ctx context.Context, image []byte, mimeType, prompt string) (*grounding.ImageEditResult, error)
}

// Deps are the server's collaborators. Nil collaborators make their
// routes answer 503.
type Deps struct {
	Generator      questiongen.Generator
	Performance    Performance
	History        History
	Tutor          Tutor
	Grounding      Grounding
	Logger         *zap.Logger
	AllowedOrigins []string
}

// Server routes HTTP requests to the collaborators.
type Server struct {
	deps     Deps
	logger   *zap.Logger
	router   *mux.Router
	upgrader websocket.Upgrader
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = []string{"*"}
	}
	s := &Server{
		deps:   deps,
		logger: deps.Logger,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/ws/quiz", s.serveQuiz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/catalog", s.catalog).Methods(http.MethodGet)
	api.HandleFunc("/performance", s.getPerformance).Methods(http.MethodGet)
	api.HandleFunc("/performance", s.resetPerformance).Methods(http.MethodDelete)
	api.HandleFunc("/sessions", s.sessions).Methods(http.MethodGet)
	api.HandleFunc("/tutor", s.askTutor).Methods(http.MethodPost)
	api.HandleFunc("/tutor", s.resetTutor).Methods(http.MethodDelete)
	api.HandleFunc("/news", s.news).Methods(http.MethodGet)
	api.HandleFunc("/places", s.places).Methods(http.MethodGet)
	api.HandleFunc("/image/edit", s.editImage).Methods(http.MethodPost)
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Run serves handler on addr until ctx is cancelled or the process gets
// SIGINT/SIGTERM, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func unavailable(w http.ResponseWriter, what string) {
	writeError(w, http.StatusServiceUnavailable, what+" is not configured")
}
