package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"name", "revenue"},
		Properties: map[string]Property{
			"name":    {Type: "string", MinLength: intPtr(2)},
			"revenue": {Type: "number", Minimum: floatPtr(0)},
			"rate":    {Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)},
			"tags":    {Type: "array", Items: &Property{Type: "string"}},
		},
		AdditionalProperties: true,
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		errorField string
		errorCode  string
	}{
		{
			name:  "valid",
			input: map[string]interface{}{"name": "Asha", "revenue": 500000.0, "rate": 85.0},
			valid: true,
		},
		{
			name:       "missing required",
			input:      map[string]interface{}{"name": "Asha"},
			errorField: "revenue",
			errorCode:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:       "null counts as missing",
			input:      map[string]interface{}{"name": "Asha", "revenue": nil},
			errorField: "revenue",
			errorCode:  "REQUIRED_FIELD_MISSING",
		},
		{
			name:  "null optional field ignored",
			input: map[string]interface{}{"name": "Asha", "revenue": 1.0, "rate": nil},
			valid: true,
		},
		{
			name:       "wrong type",
			input:      map[string]interface{}{"name": "Asha", "revenue": "lots"},
			errorField: "revenue",
			errorCode:  "INVALID_TYPE",
		},
		{
			name:       "above maximum",
			input:      map[string]interface{}{"name": "Asha", "revenue": 1.0, "rate": 150.0},
			errorField: "rate",
			errorCode:  "MAXIMUM_VIOLATION",
		},
		{
			name:       "min length counts runes",
			input:      map[string]interface{}{"name": "é", "revenue": 1.0},
			errorField: "name",
			errorCode:  "MIN_LENGTH_VIOLATION",
		},
		{
			name:       "array item type",
			input:      map[string]interface{}{"name": "Asha", "revenue": 1.0, "tags": []interface{}{"a", 2.0}},
			errorField: "tags[1]",
			errorCode:  "INVALID_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, testSchema())
			assert.Equal(t, tt.valid, result.Valid, result.GetErrorMessages())
			if !tt.valid {
				require.True(t, result.HasErrors(tt.errorField), result.GetErrorMessages())
				assert.Equal(t, tt.errorCode, result.GetErrorsForField(tt.errorField)[0].Code)
			}
		})
	}
}

func TestValidateInput_RejectsExtraFieldsWhenClosed(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = false

	result := ValidateInput(map[string]interface{}{"name": "Asha", "revenue": 1.0, "extra": true}, schema)
	assert.False(t, result.Valid)
	assert.True(t, result.HasErrors("extra"))
}

func TestMissingFields(t *testing.T) {
	input := map[string]interface{}{
		"name":  "",
		"phone": "+91 98765 43210",
		"email": nil,
	}
	assert.Equal(t, []string{"name", "email", "company"}, MissingFields(input, "name", "phone", "email", "company"))
	assert.Nil(t, MissingFields(input, "phone"))
}

func TestValidateLooseEmail(t *testing.T) {
	assert.True(t, ValidateLooseEmail("a@b.co"))
	assert.True(t, ValidateLooseEmail("rahul.sharma@company.in"))
	assert.False(t, ValidateLooseEmail("rahul@company"))
	assert.False(t, ValidateLooseEmail("not an email"))
}

func TestDocumentSchema(t *testing.T) {
	schema := MustCompileDocumentSchema(`{
		"type": "object",
		"required": ["status"],
		"properties": {
			"status": {"type": "string"},
			"transcript": {"type": "array"}
		}
	}`)

	ok, err := schema.Validate(map[string]interface{}{"status": "call_started"})
	require.NoError(t, err)
	assert.True(t, ok.Valid)

	bad, err := schema.Validate(map[string]interface{}{"status": 7.0, "transcript": "hello"})
	require.NoError(t, err)
	assert.False(t, bad.Valid)
	assert.True(t, bad.HasErrors("status"))
	assert.True(t, bad.HasErrors("transcript"))
}

func TestCompileDocumentSchema_Invalid(t *testing.T) {
	_, err := CompileDocumentSchema(`{"type": 12}`)
	assert.Error(t, err)
}
