package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentSchema is a compiled JSON Schema (draft 4/6/7) for validating raw
// JSON payloads whose shape is owned by a third party.
type DocumentSchema struct {
	schema *gojsonschema.Schema
}

// CompileDocumentSchema compiles a JSON Schema given as a string.
func CompileDocumentSchema(schemaJSON string) (*DocumentSchema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &DocumentSchema{schema: schema}, nil
}

// MustCompileDocumentSchema panics on an invalid schema; for package-level vars.
func MustCompileDocumentSchema(schemaJSON string) *DocumentSchema {
	s, err := CompileDocumentSchema(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks an already-decoded document. A non-nil error means the
// document could not be evaluated at all; schema violations are reported
// in the result.
func (d *DocumentSchema) Validate(document interface{}) (*ValidationResult, error) {
	result, err := d.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}
