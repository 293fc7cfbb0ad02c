package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/aprova/internal/app"
	"github.com/abhisek/aprova/internal/config"
	"github.com/abhisek/aprova/internal/grounding"
	"github.com/abhisek/aprova/internal/llm"
	"github.com/abhisek/aprova/internal/logging"
	"github.com/abhisek/aprova/internal/performance"
	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
	"github.com/abhisek/aprova/internal/screens/home"
	"github.com/abhisek/aprova/internal/store"
	"github.com/abhisek/aprova/internal/tutor"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// generationAttempts bounds regeneration after a failed validation.
const generationAttempts = 3

// errNoLLM is returned by commands that cannot work without a provider.
var errNoLLM = errors.New("nenhum provedor de LLM configurado (defina GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY ou OPENROUTER_API_KEY)")

// appEnv holds the services shared by the commands.
type appEnv struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	redis    *redis.Client
	perf     *performance.Tracker
	provider llm.Provider // nil when no provider is configured
}

// openEnv loads configuration, opens the store and the performance record,
// and builds the LLM provider when one is configured. When tui is set the
// logger writes to aprova.log next to the database.
func openEnv(cmd *cobra.Command, tui bool) (*appEnv, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	var logger *zap.Logger
	if tui {
		logger, err = logging.NewFile(filepath.Join(filepath.Dir(dbPath), "aprova.log"), cfg.LogLevel)
	} else {
		logger, err = logging.New(cfg.Env, cfg.LogLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	env := &appEnv{cfg: cfg, logger: logger, store: st}

	kv := st.KV()
	if cfg.Storage.Backend == config.BackendRedis {
		env.redis = redis.NewClient(cfg.Redis.Options())
		if err := env.redis.Ping(ctx).Err(); err != nil {
			env.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		kv = store.RedisKV(env.redis, cfg.Redis.Prefix)
	}
	env.perf = performance.Load(ctx, kv, logger)

	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), logger)
	if err != nil {
		logger.Debug("LLM provider not configured", zap.Error(err))
	} else {
		env.provider = provider
	}
	return env, nil
}

// Close releases the store, the redis client and the logger.
func (e *appEnv) Close() {
	if e.redis != nil {
		_ = e.redis.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
	_ = e.logger.Sync()
}

// generator returns the validated question generator, or nil without a
// provider.
func (e *appEnv) generator() questiongen.Generator {
	if e.provider == nil {
		return nil
	}
	return questiongen.NewRetrying(
		questiongen.New(e.provider, questiongen.DefaultConfig()),
		generationAttempts, e.logger)
}

// tutor returns a chat tutor with the given persona, or nil without a
// provider.
func (e *appEnv) tutor(persona tutor.Persona) *tutor.Tutor {
	if e.provider == nil {
		return nil
	}
	return tutor.New(e.provider, tutor.Options{Persona: persona, Logger: e.logger})
}

// grounding returns the Gemini grounding client, or an error when no
// Gemini key is set.
func (e *appEnv) grounding(ctx context.Context) (*grounding.Client, error) {
	return grounding.New(ctx, grounding.Config{
		APIKey:      llm.GeminiAPIKey(),
		NewsModel:   e.cfg.Grounding.NewsModel,
		PlacesModel: e.cfg.Grounding.PlacesModel,
		ImageModel:  e.cfg.Grounding.ImageModel,
	}, e.logger)
}

// quizOptions wires the engine to the performance record and the session
// history.
func (e *appEnv) quizOptions() quiz.Options {
	return quiz.Options{
		Recorder: e.perf,
		History:  e.store.EventRepo(),
		Logger:   e.logger,
	}
}

// runApp opens the environment, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, skipSplash bool) error {
	env, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	deps := home.Deps{
		QuizOptions:  env.quizOptions(),
		QuizDefaults: env.cfg.Quiz.Session(),
		Performance:  env.perf,
		History:      env.store.EventRepo(),
	}
	if gen := env.generator(); gen != nil {
		deps.Generator = gen
		deps.Tutor = env.tutor(tutor.PersonaTutor)
	} else {
		fmt.Fprintln(os.Stderr, "Provedor de LLM não configurado. Recursos de IA ficarão indisponíveis.")
	}
	if client, err := env.grounding(cmd.Context()); err != nil {
		env.logger.Info("grounding unavailable", zap.Error(err))
	} else {
		deps.News = client
	}

	return app.Run(app.Options{Deps: deps, SkipSplash: skipSplash, Logger: env.logger})
}
