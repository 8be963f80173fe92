package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/inspection-reports/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeInspection = `{
	"id": "home-v1",
	"name": "בדיקת בית",
	"sections": [
		{
			"id": "general",
			"title": "פרטים כלליים",
			"order": 0,
			"fields": [
				{"id": "client", "kind": "text", "label": "שם הלקוח", "required": true},
				{"id": "rooms", "kind": "number", "label": "חדרים", "min": 1, "max": 20},
				{"id": "type", "kind": "dropdown", "label": "סוג", "options": ["דירה", "בית"]},
				{"id": "photos", "kind": "image", "max_images": 4}
			]
		},
		{"id": "findings", "title": "ממצאים", "order": 1, "layout": "findings"},
		{"id": "invoice", "title": "הצעת מחיר", "order": 2, "layout": "invoice", "page_break_before": true}
	],
	"layout": {"direction": "rtl", "primary_color": "#1a4d8f"},
	"custom_content": {"inspector_name": "ישראל", "disclaimer": "הדוח אינו מהווה חוות דעת משפטית"}
}`

func TestParse_ValidTemplate(t *testing.T) {
	result, err := Parse([]byte(homeInspection))
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	doc := result.Template
	assert.Equal(t, "home-v1", doc.ID)
	assert.Equal(t, 1, doc.Version, "missing version defaults to 1")
	require.Len(t, doc.Sections, 3)
	assert.True(t, doc.RightToLeft())
	require.NotNil(t, doc.CustomContent)
	assert.Equal(t, "ישראל", doc.CustomContent.InspectorName)

	general := doc.Sections[0]
	require.Len(t, general.Fields, 4)
	assert.Equal(t, types.KindText, general.Fields[0].Kind())
	assert.True(t, general.Fields[0].Required)
	assert.Equal(t, types.KindNumber, general.Fields[1].Kind())
	assert.Equal(t, 20.0, *general.Fields[1].Max)
	assert.Equal(t, []string{"דירה", "בית"}, general.Fields[2].Options)
	assert.Equal(t, 4, general.Fields[3].MaxImages)

	assert.Equal(t, types.LayoutFindings, doc.Sections[1].EffectiveLayout())
	assert.True(t, doc.Sections[2].PageBreakBefore)
}

func TestParse_MalformedFieldsBecomePlaceholders(t *testing.T) {
	data := `{
		"id": "t", "name": "n",
		"sections": [{
			"id": "s",
			"fields": [
				{"id": "before", "kind": "text"},
				{"id": "sig", "kind": "signature", "label": "Signature"},
				{"id": "choice", "kind": "dropdown"},
				{"id": "grid", "kind": "table", "columns": []},
				{"id": "range", "kind": "number", "min": 10, "max": 1},
				"not an object",
				{"kind": "text"},
				{"id": "after", "kind": "date"}
			]
		}]
	}`

	result, err := Parse([]byte(data))
	require.NoError(t, err)

	fields := result.Template.Sections[0].Fields
	require.Len(t, fields, 8)

	assert.Equal(t, types.KindText, fields[0].Kind())
	assert.Equal(t, types.KindDate, fields[7].Kind(), "siblings after malformed fields are intact")

	for _, f := range fields[1:7] {
		assert.Equal(t, types.KindUnknown, f.Kind(), f.ID)
		assert.NotEmpty(t, f.UnknownReason(), f.ID)
	}
	assert.Equal(t, "signature", fields[1].RawKind())
	assert.Equal(t, "Signature", fields[1].Label)
	assert.Equal(t, "dropdown", fields[2].RawKind())
	assert.Equal(t, "#6", fields[5].ID)
	assert.Equal(t, "#7", fields[6].ID)

	assert.Len(t, result.Warnings, 6)
	for _, w := range result.Warnings {
		assert.Equal(t, "s", w.SectionID)
	}
}

func TestParse_DuplicatesDropped(t *testing.T) {
	data := `{
		"id": "t", "name": "n",
		"sections": [
			{"id": "a", "title": "first", "fields": [
				{"id": "x", "kind": "text", "label": "first x"},
				{"id": "x", "kind": "number", "label": "second x"}
			]},
			{"id": "a", "title": "second"}
		]
	}`

	result, err := Parse([]byte(data))
	require.NoError(t, err)

	require.Len(t, result.Template.Sections, 1)
	section := result.Template.Sections[0]
	assert.Equal(t, "first", section.Title)
	require.Len(t, section.Fields, 1)
	assert.Equal(t, "first x", section.Fields[0].Label)
	assert.Len(t, result.Warnings, 2)
}

func TestParse_UnsupportedLayoutAndDirection(t *testing.T) {
	data := `{
		"id": "t", "name": "n",
		"layout": {"direction": "ttb"},
		"sections": [{"id": "a", "layout": "carousel"}]
	}`

	result, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, types.LayoutFields, result.Template.Sections[0].Layout)
	assert.Equal(t, "rtl", result.Template.Layout.Direction)
	assert.Len(t, result.Warnings, 2)
}

func TestParse_InvalidCustomContentDropped(t *testing.T) {
	data := `{"id": "t", "name": "n", "sections": [], "custom_content": {"inspector_name": 42}}`

	result, err := Parse([]byte(data))
	require.NoError(t, err)
	assert.Nil(t, result.Template.CustomContent)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].String(), "custom content")
}

func TestParse_EnvelopeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{sections`},
		{"array", `[]`},
		{"missing id", `{"name": "n", "sections": []}`},
		{"missing sections", `{"id": "t", "name": "n"}`},
		{"section is not an object", `{"id": "t", "name": "n", "sections": ["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			var envErr *EnvelopeError
			assert.ErrorAs(t, err, &envErr)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home.json")
	require.NoError(t, os.WriteFile(path, []byte(homeInspection), 0o644))

	result, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "home-v1", result.Template.ID)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "section s, field f: bad", Warning{SectionID: "s", FieldID: "f", Message: "bad"}.String())
	assert.Equal(t, "section s: bad", Warning{SectionID: "s", Message: "bad"}.String())
	assert.Equal(t, "bad", Warning{Message: "bad"}.String())
}
