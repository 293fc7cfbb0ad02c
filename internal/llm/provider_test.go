package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "question-gen")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"json string", `"  Olá, aluno.  "`, "Olá, aluno."},
		{"plain text", "  Resposta direta.\n", "Resposta direta."},
		{"json object", `{"a":1}`, `{"a":1}`},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Response{Content: json.RawMessage(tt.content)}
			if got := r.Text(); got != tt.want {
				t.Fatalf("Text() = %q, want %q", got, tt.want)
			}
		})
	}

	var nilResp *Response
	if got := nilResp.Text(); got != "" {
		t.Fatalf("nil Text() = %q, want empty", got)
	}
}

func TestClassifyStatus(t *testing.T) {
	base := errors.New("boom")

	var rl *ErrRateLimit
	if !errors.As(classifyStatus(429, base), &rl) {
		t.Fatal("429 should map to ErrRateLimit")
	}

	for _, status := range []int{0, 400, 500, 503} {
		var unavail *ErrProviderUnavailable
		err := classifyStatus(status, base)
		if !errors.As(err, &unavail) {
			t.Fatalf("status %d: expected ErrProviderUnavailable, got %T", status, err)
		}
		if !errors.Is(err, base) {
			t.Fatalf("status %d: cause not wrapped", status)
		}
	}
}

func TestGeminiAPIKeyPriority(t *testing.T) {
	t.Setenv("APROVA_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	if got := GeminiAPIKey(); got != "google-key" {
		t.Fatalf("GeminiAPIKey() = %q, want google-key", got)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	if got := GeminiAPIKey(); got != "gemini-key" {
		t.Fatalf("GeminiAPIKey() = %q, want gemini-key", got)
	}

	t.Setenv("APROVA_GEMINI_API_KEY", "aprova-key")
	if got := GeminiAPIKey(); got != "aprova-key" {
		t.Fatalf("GeminiAPIKey() = %q, want aprova-key", got)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{
		"APROVA_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}

	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("DiscoverConfig() = %+v, %v", cfg, ok)
	}

	// Gemini wins over everything else.
	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, ok = DiscoverConfig()
	if !ok || cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("DiscoverConfig() = %+v, %v", cfg, ok)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("discovered config invalid: %v", err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("APROVA_LLM_PROVIDER", "openrouter")
	t.Setenv("APROVA_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("APROVA_OPENROUTER_MODEL", "anthropic/claude-haiku-4-5")
	t.Setenv("APROVA_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.OpenRouter.Model != "anthropic/claude-haiku-4-5" {
		t.Fatalf("model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Timeout.Seconds() != 5 {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.5-flash")
	if c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	if got := c.Cost(1_000_000, 0); got != 0.3 {
		t.Fatalf("input cost = %v, want 0.3", got)
	}

	if LookupCost("google/gemini-2.5-flash") == nil {
		t.Fatal("expected OpenRouter ID to resolve")
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}
