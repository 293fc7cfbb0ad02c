package grounding

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Source is a web page the answer was grounded on.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// NewsResult is a news digest with its sources.
type NewsResult struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// News asks for recent news and open notices about query, grounded on
// Google Search.
func (c *Client) News(ctx context.Context, query string) (*NewsResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("news: empty query")
	}

	prompt := fmt.Sprintf("Traga notícias recentes e editais abertos sobre: %s", query)
	resp, err := c.generate(ctx, "news", c.cfg.NewsModel,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		},
	)
	if err != nil {
		return nil, err
	}

	result := &NewsResult{Text: responseText(resp), Sources: []Source{}}
	seen := make(map[string]bool)
	for _, chunk := range groundingChunks(resp) {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		result.Sources = append(result.Sources, Source{Title: title, URI: chunk.Web.URI})
	}
	return result, nil
}
