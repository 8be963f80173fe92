// Package jobdata implements the per-job document store: a string-keyed
// (section, field) value map plus the hierarchical findings structure, both
// persisted as one JSON blob per job.
package jobdata

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/inspection-reports/internal/types"
)

// Reserved blob keys
const (
	keyCategories     = "categories"
	keyLegacyFindings = "findings"

	// escapedSectionPrefix marks a section whose id would collide with a
	// reserved key, or that already starts with the prefix.
	escapedSectionPrefix = "_section:"

	// MetaSection holds values that belong to the job rather than to a
	// template section.
	MetaSection = "_meta"
	// OverrideField stores the serialized job-level CustomContent override.
	OverrideField = "custom_content_override"
)

// Document is the in-memory form of a job's data blob. It is not safe for
// concurrent mutation; Editor serializes writers per job.
type Document struct {
	values         map[string]map[string]string
	categories     []types.Category
	legacyFindings []types.Finding

	// presentation state only, never persisted
	collapsed map[string]bool
}

// New returns an empty document.
func New() *Document {
	return &Document{
		values:    make(map[string]map[string]string),
		collapsed: make(map[string]bool),
	}
}

// Get returns the stored value or "" when absent.
func (d *Document) Get(sectionID, fieldID string) string {
	if d == nil {
		return ""
	}
	return d.values[sectionID][fieldID]
}

// Lookup is Get that also reports presence.
func (d *Document) Lookup(sectionID, fieldID string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.values[sectionID][fieldID]
	return v, ok
}

// Set stores value, creating the section entry if needed.
func (d *Document) Set(sectionID, fieldID, value string) {
	section, ok := d.values[sectionID]
	if !ok {
		section = make(map[string]string)
		d.values[sectionID] = section
	}
	section[fieldID] = value
}

// Delete removes the entry. Absent entries are ignored.
func (d *Document) Delete(sectionID, fieldID string) {
	section, ok := d.values[sectionID]
	if !ok {
		return
	}
	delete(section, fieldID)
	if len(section) == 0 {
		delete(d.values, sectionID)
	}
}

// SectionValue returns a copy of all values stored for a section.
func (d *Document) SectionValue(sectionID string) map[string]string {
	out := make(map[string]string, len(d.values[sectionID]))
	for k, v := range d.values[sectionID] {
		out[k] = v
	}
	return out
}

// SectionIDs returns the ids of all sections holding values, sorted.
func (d *Document) SectionIDs() []string {
	ids := make([]string, 0, len(d.values))
	for id := range d.values {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CustomContentOverride returns the raw override blob ("" when absent).
func (d *Document) CustomContentOverride() string {
	return d.Get(MetaSection, OverrideField)
}

// SetCustomContentOverride stores the raw override blob.
func (d *Document) SetCustomContentOverride(blob string) {
	d.Set(MetaSection, OverrideField, blob)
}

// ClearCustomContentOverride removes the override entirely.
func (d *Document) ClearCustomContentOverride() {
	d.Delete(MetaSection, OverrideField)
}

// Marshal serializes the document into its blob form. A section whose id
// collides with a reserved key is written under an escaped key.
func (d *Document) Marshal() (string, error) {
	out := make(map[string]any, len(d.values)+2)
	for sectionID, fields := range d.values {
		out[sectionKey(sectionID)] = fields
	}
	if len(d.categories) > 0 {
		out[keyCategories] = d.categories
	}
	if len(d.legacyFindings) > 0 {
		out[keyLegacyFindings] = d.legacyFindings
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", &BlobError{Message: "failed to marshal job document", Cause: err}
	}
	return string(data), nil
}

// Parse decodes a blob. An empty blob yields an empty document. Sections
// holding non-string scalars (written by older app versions) are
// stringified; sections that are not objects are dropped.
func Parse(blob string) (*Document, error) {
	doc := New()
	if len(bytes.TrimSpace([]byte(blob))) == 0 {
		return doc, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &top); err != nil {
		return nil, &BlobError{Message: "job document is not a JSON object", Cause: err}
	}

	for key, raw := range top {
		// a reserved key holding an object was written as a section
		if (key == keyCategories || key == keyLegacyFindings) && isObject(raw) {
			if fields, ok := decodeSection(raw); ok {
				doc.mergeSection(key, fields)
			}
			continue
		}
		switch key {
		case keyCategories:
			var categories []types.Category
			if err := json.Unmarshal(raw, &categories); err != nil {
				return nil, &BlobError{Message: "invalid categories", Cause: err}
			}
			doc.categories = categories
		case keyLegacyFindings:
			var findings []types.Finding
			if err := json.Unmarshal(raw, &findings); err != nil {
				return nil, &BlobError{Message: "invalid legacy findings", Cause: err}
			}
			doc.legacyFindings = findings
		default:
			if fields, ok := decodeSection(raw); ok {
				doc.mergeSection(strings.TrimPrefix(key, escapedSectionPrefix), fields)
			}
		}
	}

	return doc, nil
}

// sectionKey maps a section id to its blob key. Ids that collide with a
// reserved key or carry the escape prefix are prefixed once more.
func sectionKey(sectionID string) string {
	switch {
	case sectionID == keyCategories, sectionID == keyLegacyFindings,
		strings.HasPrefix(sectionID, escapedSectionPrefix):
		return escapedSectionPrefix + sectionID
	}
	return sectionID
}

func (d *Document) mergeSection(sectionID string, fields map[string]string) {
	section, ok := d.values[sectionID]
	if !ok {
		d.values[sectionID] = fields
		return
	}
	for k, v := range fields {
		section[k] = v
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeSection(raw json.RawMessage) (map[string]string, bool) {
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		return fields, fields != nil
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, false
	}
	fields = make(map[string]string, len(loose))
	for k, v := range loose {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			fields[k] = val
		case bool:
			fields[k] = strconv.FormatBool(val)
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			data, err := json.Marshal(val)
			if err != nil {
				continue
			}
			fields[k] = string(data)
		}
	}
	return fields, true
}
