package rendering

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jonathan/inspection-reports/internal/assembly"
)

// Renderer writes an assembled report in one output format.
type Renderer interface {
	Render(w io.Writer, report *assembly.Report) error
	ContentType() string
	Extension() string
}

// Formats lists the names accepted by ForFormat.
var Formats = []string{"json", "tex", "xlsx"}

// ForFormat returns the renderer for a format name.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "json":
		return &JSONRenderer{Indent: "  "}, nil
	case "tex", "latex":
		return &LaTeXRenderer{}, nil
	case "xlsx", "excel":
		return &XLSXRenderer{}, nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

// JSONRenderer writes the instruction list itself.
type JSONRenderer struct {
	Indent string
}

// ContentType implements Renderer.
func (r *JSONRenderer) ContentType() string { return "application/json" }

// Extension implements Renderer.
func (r *JSONRenderer) Extension() string { return ".json" }

// Render implements Renderer.
func (r *JSONRenderer) Render(w io.Writer, report *assembly.Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	if err := enc.Encode(report); err != nil {
		return &RenderError{Format: "json", Message: "failed to encode report", Cause: err}
	}
	return nil
}
