package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_ListsEmbeddedSchemas(t *testing.T) {
	assert.Equal(t, []string{CustomContent, Field, Template}, Names())
}

func TestEmbeddedSchemas_AreValidJSONSchema(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			src, err := Source(name)
			require.NoError(t, err)

			var v map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(src), &v))

			_, err = load(name)
			assert.NoError(t, err)
		})
	}
}

func TestSource_Unknown(t *testing.T) {
	_, err := Source("nope.schema.json")
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidate_Template(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{
			name: "minimal template",
			doc:  `{"id":"t1","name":"Home","sections":[]}`,
		},
		{
			name: "sections with arbitrary field entries",
			doc:  `{"id":"t1","name":"Home","version":2,"sections":[{"id":"s","fields":[{"kind":"bogus"}, 5]}]}`,
		},
		{
			name:      "missing name",
			doc:       `{"id":"t1","sections":[]}`,
			wantError: true,
		},
		{
			name:      "sections not an array",
			doc:       `{"id":"t1","name":"Home","sections":{}}`,
			wantError: true,
		},
		{
			name:      "section without id",
			doc:       `{"id":"t1","name":"Home","sections":[{"title":"x"}]}`,
			wantError: true,
		},
		{
			name:      "version zero",
			doc:       `{"id":"t1","name":"Home","version":0,"sections":[]}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Template, []byte(tt.doc))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidate_FieldKindRequirements(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantError bool
	}{
		{"text", `{"id":"a","kind":"text"}`, false},
		{"dropdown with options", `{"id":"a","kind":"dropdown","options":["x"]}`, false},
		{"dropdown without options", `{"id":"a","kind":"dropdown"}`, true},
		{"dropdown with empty options", `{"id":"a","kind":"dropdown","options":[]}`, true},
		{"table with columns", `{"id":"a","kind":"table","columns":[{"id":"c"}]}`, false},
		{"table without columns", `{"id":"a","kind":"table"}`, true},
		{"table column without id", `{"id":"a","kind":"table","columns":[{"label":"c"}]}`, true},
		{"image with zero max", `{"id":"a","kind":"image","max_images":0}`, true},
		{"missing kind", `{"id":"a"}`, true},
		{"unknown kind is still well formed", `{"id":"a","kind":"signature"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Field, []byte(tt.doc))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_CustomContent(t *testing.T) {
	assert.NoError(t, Validate(CustomContent, []byte(`{"inspector_name":"A","section_texts":{"roof":[{"text":"x","order":1}]}}`)))
	assert.Error(t, Validate(CustomContent, []byte(`{"inspector_name":5}`)))
	assert.Error(t, Validate(CustomContent, []byte(`[]`)))
}

func TestValidate_MalformedDocument(t *testing.T) {
	err := Validate(Template, []byte(`{ invalid json }`))
	require.Error(t, err)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"t","name":"n","sections":[]}`), 0o644))

	assert.NoError(t, ValidateFile(Template, path))

	err := ValidateFile(Template, filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"age": 30}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
	assert.NoError(t, ValidateJSONString(schemaContent, `{"name": "test"}`))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "sections", Message: "must be an array"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "sections")
}
