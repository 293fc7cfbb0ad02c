// Package config loads aprova settings from an optional YAML file, a .env
// file and APROVA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/aprova/internal/questiongen"
	"github.com/abhisek/aprova/internal/quiz"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"`             // development or production
	LogLevel  string          `mapstructure:"log_level" yaml:"log_level"` // zap level name
	DBPath    string          `mapstructure:"db_path" yaml:"db_path"`     // empty means the default data dir
	Quiz      QuizConfig      `mapstructure:"quiz" yaml:"quiz"`
	Voice     VoiceConfig     `mapstructure:"voice" yaml:"voice"`
	Grounding GroundingConfig `mapstructure:"grounding" yaml:"grounding"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// QuizConfig holds the defaults offered by the simulator form.
type QuizConfig struct {
	QuestionCount int           `mapstructure:"question_count" yaml:"question_count"`
	TimeLimit     time.Duration `mapstructure:"time_limit" yaml:"time_limit"`
	Source        string        `mapstructure:"source" yaml:"source"`
	Subject       string        `mapstructure:"subject" yaml:"subject"`
	Difficulty    string        `mapstructure:"difficulty" yaml:"difficulty"`
}

// VoiceConfig selects the live session transport.
type VoiceConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"` // sdk or websocket
	Model     string `mapstructure:"model" yaml:"model"`
	VoiceName string `mapstructure:"voice_name" yaml:"voice_name"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"` // websocket transport only
}

// GroundingConfig selects models for news, places and image editing.
type GroundingConfig struct {
	NewsModel   string `mapstructure:"news_model" yaml:"news_model"`
	PlacesModel string `mapstructure:"places_model" yaml:"places_model"`
	ImageModel  string `mapstructure:"image_model" yaml:"image_model"`
}

// StorageConfig selects where the performance record lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // sqlite or redis
}

// RedisConfig is used when Storage.Backend is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// ServerConfig configures `aprova serve`.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

const (
	TransportSDK       = "sdk"
	TransportWebSocket = "websocket"

	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Load reads configuration. When path is empty, aprova.yaml is looked up in
// ./config and $XDG_CONFIG_HOME/aprova; a missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("aprova")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "aprova"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix("APROVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_path", "")

	v.SetDefault("quiz.question_count", 10)
	v.SetDefault("quiz.time_limit", "30m")
	v.SetDefault("quiz.source", "FGV")
	v.SetDefault("quiz.subject", "Direito Constitucional")
	v.SetDefault("quiz.difficulty", "Médio")

	v.SetDefault("voice.transport", TransportSDK)
	v.SetDefault("voice.model", "")
	v.SetDefault("voice.voice_name", "")
	v.SetDefault("voice.endpoint", "")

	v.SetDefault("grounding.news_model", "")
	v.SetDefault("grounding.places_model", "")
	v.SetDefault("grounding.image_model", "")

	v.SetDefault("storage.backend", BackendSQLite)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "aprova:")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// Validate checks enumerated values and quiz bounds.
func (c *Config) Validate() error {
	switch c.Voice.Transport {
	case TransportSDK, TransportWebSocket:
	default:
		return fmt.Errorf("voice.transport must be %q or %q, got %q", TransportSDK, TransportWebSocket, c.Voice.Transport)
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendRedis, c.Storage.Backend)
	}
	if err := c.Quiz.Session().Validate(); err != nil {
		return fmt.Errorf("quiz: %w", err)
	}
	if s := c.Quiz.Source; s != "" && !questiongen.IsSource(s) {
		return fmt.Errorf("quiz.source %q is not one of %v", s, questiongen.Sources)
	}
	if s := c.Quiz.Subject; s != "" && !questiongen.IsSubject(s) {
		return fmt.Errorf("quiz.subject %q is not one of %v", s, questiongen.Subjects)
	}
	if d := c.Quiz.Difficulty; d != "" && !questiongen.IsDifficulty(d) {
		return fmt.Errorf("quiz.difficulty %q is not one of %v", d, questiongen.Difficulties)
	}
	return nil
}

// Session converts the defaults to a quiz session configuration.
func (q QuizConfig) Session() quiz.Config {
	return quiz.Config{
		Source:        q.Source,
		Subject:       q.Subject,
		Difficulty:    q.Difficulty,
		QuestionCount: q.QuestionCount,
		TimeLimit:     q.TimeLimit,
	}
}

// Options returns go-redis client options.
func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{Addr: r.Addr, Password: r.Password, DB: r.DB}
}

// YAML renders the effective configuration. The redis password is masked.
func (c *Config) YAML() (string, error) {
	out := *c
	if out.Redis.Password != "" {
		out.Redis.Password = "********"
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(b), nil
}
