package pipeline

import "github.com/abhisek/physiq/internal/llm"

// RefinedQuestionSchema is the JSON layout requested from refiners when
// structured refinement is on.
var RefinedQuestionSchema = &llm.Schema{
	Name:        "refined-question",
	Description: "A reviewed IB Physics multiple-choice question with exactly four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The refined question stem, with SI units",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "The four answer options in A-D order, without letter labels",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"enum":        []any{"A", "B", "C", "D"},
				"description": "Letter of the single correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "One or two sentences justifying the correct answer",
			},
			"improvements": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Changes made to the original question",
			},
		},
		"required":             []any{"question", "options", "correct_answer", "explanation", "improvements"},
		"additionalProperties": false,
	},
}
