// Package types provides type definitions for the templates, jobs and report content used throughout the system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"sort"

	"github.com/go-playground/validator/v10"
)

// FieldKind identifies the variant of a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindCheckbox FieldKind = "checkbox"
	KindDropdown FieldKind = "dropdown"
	KindImage    FieldKind = "image"
	KindTable    FieldKind = "table"
	KindDate     FieldKind = "date"
	// KindUnknown is the placeholder for definitions that could not be
	// understood. The original kind string is kept in FieldSchema.RawKind.
	KindUnknown FieldKind = "unknown"
)

var knownKinds = map[FieldKind]bool{
	KindText:     true,
	KindTextArea: true,
	KindNumber:   true,
	KindCheckbox: true,
	KindDropdown: true,
	KindImage:    true,
	KindTable:    true,
	KindDate:     true,
}

// ParseFieldKind maps a raw kind string to a FieldKind. Unrecognized kinds
// return KindUnknown and false.
func ParseFieldKind(raw string) (FieldKind, bool) {
	k := FieldKind(raw)
	if knownKinds[k] {
		return k, true
	}
	return KindUnknown, false
}

// TableColumn describes one column of a table field
type TableColumn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// FieldSchema is the typed description of one form field.
// The kind is fixed at construction; use NewField or UnknownField.
type FieldSchema struct {
	ID          string        `json:"id" validate:"required"`
	Label       string        `json:"label"`
	Required    bool          `json:"required,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	MaxImages   int           `json:"max_images,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Options     []string      `json:"options,omitempty"`
	Columns     []TableColumn `json:"columns,omitempty"`

	kind    FieldKind
	rawKind string
	reason  string
}

// NewField creates a field of a known kind.
func NewField(id string, kind FieldKind, label string) FieldSchema {
	return FieldSchema{ID: id, Label: label, kind: kind, rawKind: string(kind)}
}

// UnknownField creates the placeholder variant for a definition whose kind
// is unrecognized or whose kind-specific attributes are invalid.
func UnknownField(id, rawKind, reason string) FieldSchema {
	return FieldSchema{ID: id, kind: KindUnknown, rawKind: rawKind, reason: reason}
}

// Kind returns the field variant.
func (f FieldSchema) Kind() FieldKind {
	if f.kind == "" {
		return KindUnknown
	}
	return f.kind
}

// RawKind returns the kind string as it appeared in the definition.
func (f FieldSchema) RawKind() string { return f.rawKind }

// UnknownReason explains why the field degraded to KindUnknown.
func (f FieldSchema) UnknownReason() string { return f.reason }

type fieldSchemaJSON struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	Label       string        `json:"label,omitempty"`
	Required    bool          `json:"required,omitempty"`
	Placeholder string        `json:"placeholder,omitempty"`
	MaxImages   int           `json:"max_images,omitempty"`
	Min         *float64      `json:"min,omitempty"`
	Max         *float64      `json:"max,omitempty"`
	Options     []string      `json:"options,omitempty"`
	Columns     []TableColumn `json:"columns,omitempty"`
	RawKind     string        `json:"raw_kind,omitempty"`
	Reason      string        `json:"unknown_reason,omitempty"`
}

// MarshalJSON keeps placeholder fields as placeholders: an unknown field is
// written with kind "unknown" plus its raw kind and reason.
func (f FieldSchema) MarshalJSON() ([]byte, error) {
	var rawKind, reason string
	if f.Kind() == KindUnknown {
		rawKind, reason = f.rawKind, f.reason
	}
	return json.Marshal(fieldSchemaJSON{
		ID:          f.ID,
		Kind:        string(f.Kind()),
		RawKind:     rawKind,
		Reason:      reason,
		Label:       f.Label,
		Required:    f.Required,
		Placeholder: f.Placeholder,
		MaxImages:   f.MaxImages,
		Min:         f.Min,
		Max:         f.Max,
		Options:     f.Options,
		Columns:     f.Columns,
	})
}

// UnmarshalJSON restores a stored field. Kind-specific attribute checks are
// done by the templates package; here only the kind string is classified.
func (f *FieldSchema) UnmarshalJSON(data []byte) error {
	var raw fieldSchemaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Kind == string(KindUnknown) {
		*f = UnknownField(raw.ID, raw.RawKind, raw.Reason)
		f.Label = raw.Label
		return nil
	}
	kind, ok := ParseFieldKind(raw.Kind)
	*f = FieldSchema{
		ID:          raw.ID,
		Label:       raw.Label,
		Required:    raw.Required,
		Placeholder: raw.Placeholder,
		MaxImages:   raw.MaxImages,
		Min:         raw.Min,
		Max:         raw.Max,
		Options:     raw.Options,
		Columns:     raw.Columns,
		kind:        kind,
		rawKind:     raw.Kind,
	}
	if !ok {
		f.reason = "unsupported field kind"
	}
	return nil
}

// SectionLayout selects how a section is assembled.
type SectionLayout string

const (
	LayoutFields    SectionLayout = "fields"
	LayoutFindings  SectionLayout = "findings"
	LayoutInvoice   SectionLayout = "invoice"
	LayoutInspector SectionLayout = "inspector"
)

// Section is an ordered group of fields within a template
type Section struct {
	ID              string        `json:"id" validate:"required"`
	Title           string        `json:"title"`
	Order           int           `json:"order"`
	Layout          SectionLayout `json:"layout,omitempty"`
	PageBreakBefore bool          `json:"page_break_before,omitempty"`
	Fields          []FieldSchema `json:"fields" validate:"dive"`
}

// EffectiveLayout returns the layout, defaulting to LayoutFields.
func (s Section) EffectiveLayout() SectionLayout {
	if s.Layout == "" {
		return LayoutFields
	}
	return s.Layout
}

// Field returns the field with the given id.
func (s Section) Field(id string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// Margins in points
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// LayoutHints are optional presentation hints forwarded to the renderer.
type LayoutHints struct {
	Margins      *Margins `json:"margins,omitempty"`
	PrimaryColor string   `json:"primary_color,omitempty"`
	Direction    string   `json:"direction,omitempty" validate:"omitempty,oneof=rtl ltr"`
}

// TemplateDocument is the versioned, job-independent report schema.
type TemplateDocument struct {
	ID            string         `json:"id" validate:"required"`
	Name          string         `json:"name" validate:"required"`
	Version       int            `json:"version" validate:"gte=1"`
	Sections      []Section      `json:"sections" validate:"dive"`
	Layout        *LayoutHints   `json:"layout,omitempty"`
	CustomContent *CustomContent `json:"custom_content,omitempty"`
}

// Validate validates the TemplateDocument using the validator.
func (t *TemplateDocument) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}

// OrderedSections returns the sections sorted by Order. Ties keep
// declaration order.
func (t *TemplateDocument) OrderedSections() []Section {
	if t == nil {
		return nil
	}
	sections := make([]Section, len(t.Sections))
	copy(sections, t.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
	return sections
}

// Section looks up a section by id.
func (t *TemplateDocument) Section(id string) (Section, bool) {
	if t == nil {
		return Section{}, false
	}
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// RightToLeft reports whether the template is laid out right to left.
// Templates without a direction hint default to right to left.
func (t *TemplateDocument) RightToLeft() bool {
	if t == nil || t.Layout == nil || t.Layout.Direction == "" {
		return true
	}
	return t.Layout.Direction == "rtl"
}
