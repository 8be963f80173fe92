// Package assembly walks a job's template and data and produces the ordered
// render instructions of its report.
package assembly

import (
	"errors"

	"github.com/jonathan/inspection-reports/internal/types"
)

// ErrNoReport is returned when a report cannot be produced at all because
// the job or its template is missing.
var ErrNoReport = errors.New("no report generated")

// Kind identifies an instruction variant.
type Kind string

const (
	KindText      Kind = "text"
	KindTable     Kind = "table"
	KindImage     Kind = "image"
	KindPageBreak Kind = "page_break"
)

// Style tells the renderer how to present a text block.
type Style string

const (
	StyleTitle      Style = "title"
	StyleMeta       Style = "meta"
	StyleHeading    Style = "heading"
	StyleSubheading Style = "subheading"
	StyleFinding    Style = "finding"
	StyleField      Style = "field"
	StyleBody       Style = "body"
	StyleTotal      Style = "total"
	StyleFooter     Style = "footer"
)

// Table is a grid of already shaped cell text.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ImageRef points at an image file owned by the host application.
type ImageRef struct {
	Path    string `json:"path"`
	Caption string `json:"caption,omitempty"`
}

// Instruction is one render step. Text, Label and table cells are in visual
// order when the report is right to left.
type Instruction struct {
	Kind      Kind      `json:"kind"`
	Style     Style     `json:"style,omitempty"`
	SectionID string    `json:"section_id,omitempty"`
	FieldID   string    `json:"field_id,omitempty"`
	Label     string    `json:"label,omitempty"`
	Text      string    `json:"text,omitempty"`
	Table     *Table    `json:"table,omitempty"`
	Image     *ImageRef `json:"image,omitempty"`
}

// Skip records a part of the template that was left out of the report.
type Skip struct {
	SectionID string `json:"section_id,omitempty"`
	FieldID   string `json:"field_id,omitempty"`
	Reason    string `json:"reason"`
}

// Report is the assembled output for one job.
type Report struct {
	JobID        string             `json:"job_id"`
	TemplateID   string             `json:"template_id"`
	Title        string             `json:"title"`
	RightToLeft  bool               `json:"right_to_left"`
	Layout       *types.LayoutHints `json:"layout,omitempty"`
	Instructions []Instruction      `json:"instructions"`
	Skipped      []Skip             `json:"skipped,omitempty"`
}

// Count returns the number of instructions of the given kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, in := range r.Instructions {
		if in.Kind == kind {
			n++
		}
	}
	return n
}
