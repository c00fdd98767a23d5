package generatetext

import "gemini-gateway/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"prompt"},
		Properties: map[string]validation.Property{
			"prompt": {
				Type:        "string",
				Description: "Instruction sent to the model",
				MinLength:   validation.IntPtr(1),
			},
		},
	}
}
