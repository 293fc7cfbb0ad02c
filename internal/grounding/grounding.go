// Package grounding answers study questions that need fresh or local
// context: news through Google Search, nearby study places through Google
// Maps, and edits of study material images.
package grounding

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultNewsModel   = "gemini-2.5-flash"
	DefaultPlacesModel = "gemini-2.5-flash"
	DefaultImageModel  = "gemini-2.5-flash-image"
)

// ErrEmptyResponse is returned when the model produced nothing usable.
var ErrEmptyResponse = errors.New("grounding: empty response")

// Config selects the models used for each capability.
type Config struct {
	APIKey      string
	NewsModel   string
	PlacesModel string
	ImageModel  string
}

func (c Config) withDefaults() Config {
	if c.NewsModel == "" {
		c.NewsModel = DefaultNewsModel
	}
	if c.PlacesModel == "" {
		c.PlacesModel = DefaultPlacesModel
	}
	if c.ImageModel == "" {
		c.ImageModel = DefaultImageModel
	}
	return c
}

// contentGenerator is the slice of the genai Models service used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client talks to Gemini with grounding tools enabled.
type Client struct {
	gen    contentGenerator
	cfg    Config
	logger *zap.Logger
}

// New creates a Client backed by the Gemini API.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return newClient(client.Models, cfg, logger), nil
}

func newClient(gen contentGenerator, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gen: gen, cfg: cfg.withDefaults(), logger: logger}
}

func (c *Client) generate(ctx context.Context, op, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := c.gen.GenerateContent(ctx, model, contents, config)
	if err != nil {
		c.logger.Warn("grounding request failed",
			zap.String("op", op),
			zap.String("model", model),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	c.logger.Debug("grounding request",
		zap.String("op", op),
		zap.String("model", model),
		zap.Int("chunks", len(groundingChunks(resp))),
	)
	return resp, nil
}

func groundingChunks(resp *genai.GenerateContentResponse) []*genai.GroundingChunk {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return resp.Candidates[0].GroundingMetadata.GroundingChunks
}

// responseText concatenates the non-thought text parts of the first
// candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		out += p.Text
	}
	return out
}
