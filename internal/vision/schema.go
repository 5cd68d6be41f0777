package vision

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const classificationSchemaURL = "schema://classification.json"

// classificationSchema is what a model answer must look like to be used as-is.
// confidence may be a number or a label. Optional fields may be null.
var classificationSchema = map[string]any{
	"type":     "object",
	"required": []any{"equipment", "condition"},
	"properties": map[string]any{
		"equipment": map[string]any{
			"type":    "string",
			"pattern": `\S`,
		},
		"condition": map[string]any{
			"type": "string",
			"enum": []any{"excellent", "good", "fair", "poor"},
		},
		"description": map[string]any{"type": []any{"string", "null"}},
		"visibleIssues": map[string]any{
			"type":  []any{"array", "null"},
			"items": map[string]any{"type": "string"},
		},
		"confidence": map[string]any{
			"type": []any{"string", "number", "null"},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(classificationSchemaURL, classificationSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(classificationSchemaURL)
	})
	return compiledSchema, compileErr
}

// validateClassification checks a decoded JSON value against classificationSchema.
func validateClassification(doc any) error {
	s, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile classification schema: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
