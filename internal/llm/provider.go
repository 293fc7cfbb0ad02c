package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
// Question generation asks for schema-constrained JSON; the tutor asks for
// free text. Both go through Generate.
type Provider interface {
	// Generate sends a prompt to the LLM. When req.Schema is set the
	// response Content is JSON validated against that schema, otherwise it
	// holds the model's plain text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt (persona and constraints).
	System string

	// Messages is the conversation history, oldest first. Question
	// generation sends a single user message; the tutor replays its
	// bounded chat history.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// Nil means free-text output.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Zero leaves the provider default in place.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema in provider requests and in the compiled
	// schema cache. Kebab-case, e.g. "concurso-question".
	Name string

	// Description tells the model what the object represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON for schema requests,
	// raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is one of StopEnd, StopMaxTokens or StopFiltered.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	// StopFiltered means the provider withheld or cut the output for
	// safety or policy reasons.
	StopFiltered = "filtered"
)

// Text returns Content as plain text. A JSON string literal is unquoted;
// anything else is returned trimmed and verbatim.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
