package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/aprova/internal/llm"
	"github.com/google/uuid"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	Statement       string   `json:"statement"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correct_option_id"`
	Explanation     string   `json:"explanation"`
}

// Generate produces a single question for the given input context.
func (g *LLMGenerator) Generate(ctx context.Context, input GenerateInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	options := make([]Option, len(raw.Options))
	for i, o := range raw.Options {
		options[i] = Option{
			ID:   strings.ToUpper(strings.TrimSpace(o.ID)),
			Text: strings.TrimSpace(o.Text),
		}
	}

	q := &Question{
		ID:              uuid.NewString(),
		Source:          input.Source,
		Subject:         input.Subject,
		Difficulty:      input.Difficulty,
		Statement:       strings.TrimSpace(raw.Statement),
		Options:         options,
		CorrectOptionID: strings.ToUpper(strings.TrimSpace(raw.CorrectOptionID)),
		Explanation:     strings.TrimSpace(raw.Explanation),
	}

	// Run validators in order.
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, verr
		}
	}

	return q, nil
}
