package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema defines the structure for request body schemas
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled schema; safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schema once for reuse across requests.
func NewValidator(schema JSONSchema) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ValidateInput validates a decoded JSON document (map, slice, scalar).
func (v *Validator) ValidateInput(input interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		// "required" errors are reported against the parent object.
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				field = prop
			}
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errs,
	}
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func IntPtr(i int) *int {
	return &i
}
