package rendering

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/inspection-reports/internal/assembly"
)

//go:embed templates/report.tex.tmpl
var defaultLaTeXTemplate string

// defaultMargin is used for any side without a layout hint, in points.
const defaultMargin = 56.7

// TemplateData represents the data structure passed to the LaTeX template
type TemplateData struct {
	Title        string
	Font         string
	PrimaryColor string // hex without '#'
	Margins      MarginData
	Blocks       []Block
}

// MarginData holds page margins in points.
type MarginData struct {
	Top, Right, Bottom, Left float64
}

// Block is one escaped instruction ready for the template.
type Block struct {
	Kind       string
	Style      string
	Label      string
	Text       string
	Headers    []string
	Rows       [][]string
	ColumnSpec string
	ImagePath  string
	Caption    string
}

// LaTeXRenderer renders a report as LaTeX source.
type LaTeXRenderer struct {
	// TemplatePath overrides the embedded template when set.
	TemplatePath string
	// Font is passed to \setmainfont. Defaults to "David CLM".
	Font string
}

// ContentType implements Renderer.
func (r *LaTeXRenderer) ContentType() string { return "application/x-tex" }

// Extension implements Renderer.
func (r *LaTeXRenderer) Extension() string { return ".tex" }

// Render implements Renderer.
func (r *LaTeXRenderer) Render(w io.Writer, report *assembly.Report) error {
	tmpl, err := r.template()
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, r.buildTemplateData(report)); err != nil {
		return &TemplateError{
			Message: "failed to execute template",
			Cause:   err,
		}
	}
	return nil
}

// RenderLaTeX renders a report to a LaTeX string.
func (r *LaTeXRenderer) RenderLaTeX(report *assembly.Report) (string, error) {
	var sb strings.Builder
	if err := r.Render(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *LaTeXRenderer) template() (*template.Template, error) {
	if r.TemplatePath == "" {
		return newTemplate(defaultLaTeXTemplate)
	}
	return parseTemplate(r.TemplatePath)
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}
	return newTemplate(string(content))
}

func newTemplate(content string) (*template.Template, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
		"join":   strings.Join,
	}).Parse(content)
	if err != nil {
		return nil, &TemplateError{
			Message: "failed to parse template",
			Cause:   err,
		}
	}
	return tmpl, nil
}

// buildTemplateData escapes every user-visible string of the report.
func (r *LaTeXRenderer) buildTemplateData(report *assembly.Report) *TemplateData {
	data := &TemplateData{
		Title:        EscapeLaTeX(report.Title),
		Font:         r.Font,
		PrimaryColor: "1A4D8F",
		Margins:      MarginData{defaultMargin, defaultMargin, defaultMargin, defaultMargin},
		Blocks:       make([]Block, 0, len(report.Instructions)),
	}
	if data.Font == "" {
		data.Font = "David CLM"
	}
	if hints := report.Layout; hints != nil {
		if c := strings.TrimPrefix(hints.PrimaryColor, "#"); len(c) == 6 {
			data.PrimaryColor = strings.ToUpper(c)
		}
		if m := hints.Margins; m != nil {
			data.Margins = MarginData{
				Top:    orDefault(m.Top),
				Right:  orDefault(m.Right),
				Bottom: orDefault(m.Bottom),
				Left:   orDefault(m.Left),
			}
		}
	}

	for _, in := range report.Instructions {
		block := Block{
			Kind:  string(in.Kind),
			Style: string(in.Style),
			Label: EscapeLaTeX(in.Label),
			Text:  EscapeLaTeX(in.Text),
		}
		switch in.Kind {
		case assembly.KindTable:
			if in.Table == nil || len(in.Table.Headers) == 0 {
				continue
			}
			block.Headers = escapeAll(in.Table.Headers)
			block.Rows = make([][]string, len(in.Table.Rows))
			for i, row := range in.Table.Rows {
				block.Rows[i] = escapeAll(row)
			}
			block.ColumnSpec = "|" + strings.Repeat("l|", len(in.Table.Headers))
		case assembly.KindImage:
			if in.Image == nil {
				continue
			}
			block.ImagePath = in.Image.Path
			block.Caption = EscapeLaTeX(in.Image.Caption)
		}
		data.Blocks = append(data.Blocks, block)
	}
	return data
}

func orDefault(v float64) float64 {
	if v <= 0 {
		return defaultMargin
	}
	return v
}

func escapeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = EscapeLaTeX(v)
	}
	return out
}
