// Package templates parses report template definitions into TemplateDocuments.
//
// Parsing is tolerant below the envelope: a field with an unsupported kind or
// invalid kind-specific attributes becomes a KindUnknown placeholder, and
// duplicate sections or fields are dropped, each with a Warning. Only an
// unusable envelope is an error.
package templates

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/inspection-reports/internal/schemas"
	"github.com/jonathan/inspection-reports/internal/types"
)

// Result is a parsed template and the problems that were absorbed.
type Result struct {
	Template *types.TemplateDocument
	Warnings []Warning
}

type envelope struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Version       int                `json:"version"`
	Sections      []sectionEnvelope  `json:"sections"`
	Layout        *types.LayoutHints `json:"layout"`
	CustomContent json.RawMessage    `json:"custom_content"`
}

type sectionEnvelope struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Order           int               `json:"order"`
	Layout          string            `json:"layout"`
	PageBreakBefore bool              `json:"page_break_before"`
	Fields          []json.RawMessage `json:"fields"`
}

var layouts = map[types.SectionLayout]bool{
	types.LayoutFields:    true,
	types.LayoutFindings:  true,
	types.LayoutInvoice:   true,
	types.LayoutInspector: true,
}

// ParseFile reads and parses a template definition from disk.
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return Parse(data)
}

// Parse turns a JSON template definition into a TemplateDocument.
func Parse(data []byte) (*Result, error) {
	if err := schemas.Validate(schemas.Template, data); err != nil {
		return nil, &EnvelopeError{Message: "envelope does not match schema", Cause: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &EnvelopeError{Message: "failed to decode envelope", Cause: err}
	}

	p := &parser{}
	doc := &types.TemplateDocument{
		ID:            env.ID,
		Name:          env.Name,
		Version:       env.Version,
		Layout:        p.layoutHints(env.Layout),
		CustomContent: p.customContent(env.CustomContent),
		Sections:      make([]types.Section, 0, len(env.Sections)),
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	seen := make(map[string]bool, len(env.Sections))
	for _, se := range env.Sections {
		if seen[se.ID] {
			p.warn(se.ID, "", "duplicate section id, later definition dropped")
			continue
		}
		seen[se.ID] = true
		doc.Sections = append(doc.Sections, p.section(se))
	}

	if err := doc.Validate(); err != nil {
		return nil, &EnvelopeError{Message: "template failed validation", Cause: err}
	}
	return &Result{Template: doc, Warnings: p.warnings}, nil
}

type parser struct {
	warnings []Warning
}

func (p *parser) warn(sectionID, fieldID, format string, args ...interface{}) {
	p.warnings = append(p.warnings, Warning{
		SectionID: sectionID,
		FieldID:   fieldID,
		Message:   fmt.Sprintf(format, args...),
	})
}

func (p *parser) layoutHints(hints *types.LayoutHints) *types.LayoutHints {
	if hints == nil {
		return nil
	}
	switch hints.Direction {
	case "", "rtl", "ltr":
	default:
		p.warn("", "", "unsupported direction %q, using rtl", hints.Direction)
		hints.Direction = "rtl"
	}
	return hints
}

func (p *parser) customContent(raw json.RawMessage) *types.CustomContent {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := schemas.Validate(schemas.CustomContent, raw); err != nil {
		p.warn("", "", "custom content dropped: %v", firstLine(err))
		return nil
	}
	var cc types.CustomContent
	if err := json.Unmarshal(raw, &cc); err != nil {
		p.warn("", "", "custom content dropped: %v", err)
		return nil
	}
	return &cc
}

func (p *parser) section(se sectionEnvelope) types.Section {
	s := types.Section{
		ID:              se.ID,
		Title:           se.Title,
		Order:           se.Order,
		PageBreakBefore: se.PageBreakBefore,
		Layout:          types.SectionLayout(se.Layout),
		Fields:          make([]types.FieldSchema, 0, len(se.Fields)),
	}
	if s.Layout != "" && !layouts[s.Layout] {
		p.warn(se.ID, "", "unsupported layout %q, using fields", se.Layout)
		s.Layout = types.LayoutFields
	}

	seen := make(map[string]bool, len(se.Fields))
	for i, raw := range se.Fields {
		f := p.field(se.ID, i, raw)
		if seen[f.ID] {
			p.warn(se.ID, f.ID, "duplicate field id, later definition dropped")
			continue
		}
		seen[f.ID] = true
		s.Fields = append(s.Fields, f)
	}
	return s
}

// field parses one field definition. It never fails: anything that cannot
// be used becomes a placeholder.
func (p *parser) field(sectionID string, index int, raw json.RawMessage) types.FieldSchema {
	var loose map[string]interface{}
	if err := json.Unmarshal(raw, &loose); err != nil {
		id := fmt.Sprintf("#%d", index+1)
		p.warn(sectionID, id, "field definition is not an object")
		return types.UnknownField(id, "", "field definition is not an object")
	}

	id, _ := loose["id"].(string)
	if id == "" {
		id = fmt.Sprintf("#%d", index+1)
	}
	rawKind, _ := loose["kind"].(string)
	label, _ := loose["label"].(string)

	placeholder := func(reason string) types.FieldSchema {
		p.warn(sectionID, id, "%s", reason)
		f := types.UnknownField(id, rawKind, reason)
		f.Label = label
		return f
	}

	if err := schemas.Validate(schemas.Field, raw); err != nil {
		return placeholder(firstLine(err))
	}
	if rawKind == string(types.KindUnknown) {
		return placeholder("unsupported field kind")
	}

	var f types.FieldSchema
	if err := json.Unmarshal(raw, &f); err != nil {
		return placeholder(err.Error())
	}
	if f.Kind() == types.KindUnknown {
		return placeholder(f.UnknownReason())
	}
	if f.Kind() == types.KindNumber && f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return placeholder("min is greater than max")
	}
	return f
}

// firstLine reduces a multi-line validation report to its first problem.
func firstLine(err error) string {
	if ve, ok := err.(*schemas.ValidationError); ok && len(ve.Errors) > 0 {
		return fmt.Sprintf("%s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	}
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
