package llm

import (
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
	}{
		{
			name: "default base URL",
			cfg:  OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.5-flash"},
		},
		{
			name: "custom base URL",
			cfg: OpenRouterConfig{
				APIKey:  "sk-or-test",
				Model:   "google/gemini-2.5-flash",
				BaseURL: "https://custom.openrouter.example/v1",
			},
		},
		{
			name:    "empty API key",
			cfg:     OpenRouterConfig{Model: "google/gemini-2.5-flash"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// OpenRouter model IDs are passed through without friendly-name mapping.
			if p.ModelID() != tt.cfg.Model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.cfg.Model)
			}
		})
	}
}
