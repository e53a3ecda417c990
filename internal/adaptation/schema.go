package adaptation

import "google.golang.org/genai"

// ResponseSchema constrains the model reply to {exercises: [...], rationale: "..."}.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"exercises": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":          {Type: genai.TypeString},
						"name":        {Type: genai.TypeString},
						"reps":        {Type: genai.TypeInteger},
						"sets":        {Type: genai.TypeInteger},
						"icon":        {Type: genai.TypeString},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"id", "name", "reps", "sets", "icon", "description"},
				},
			},
			"rationale": {
				Type:        genai.TypeString,
				Description: "Why these adjustments were made.",
			},
		},
		Required: []string{"exercises", "rationale"},
	}
}
