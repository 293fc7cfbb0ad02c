package questiongen

import "github.com/abhisek/aprova/internal/llm"

// QuestionSchema defines the JSON schema for LLM question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "concurso-question",
	Description: "A single multiple-choice public exam question with answer key and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement": map[string]any{
				"type":        "string",
				"description": "The question statement, in Brazilian Portuguese",
			},
			"options": map[string]any{
				"type":     "array",
				"minItems": 2,
				"maxItems": 5,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"enum":        []any{"A", "B", "C", "D", "E"},
							"description": "Option label",
						},
						"text": map[string]any{
							"type":        "string",
							"description": "Option text",
						},
					},
					"required":             []any{"id", "text"},
					"additionalProperties": false,
				},
				"description": "Five alternatives labeled A to E, in order",
			},
			"correct_option_id": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D", "E"},
				"description": "Label of the single correct alternative",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct alternative is right and the others are wrong",
			},
		},
		"required":             []any{"statement", "options", "correct_option_id", "explanation"},
		"additionalProperties": false,
	},
}
