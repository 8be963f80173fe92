package rendering

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *assembly.Report {
	return &assembly.Report{
		JobID:      "job-1",
		TemplateID: "tpl-1",
		Title:      "Inspection #7",
		Instructions: []assembly.Instruction{
			{Kind: assembly.KindText, Style: assembly.StyleTitle, Text: "Inspection #7"},
			{Kind: assembly.KindText, Style: assembly.StyleMeta, Label: "Client", Text: "Dana & Sons"},
			{Kind: assembly.KindPageBreak},
			{Kind: assembly.KindText, Style: assembly.StyleHeading, SectionID: "roof", Text: "Roof"},
			{Kind: assembly.KindText, Style: assembly.StyleField, Label: "Area", Text: "1,234.5"},
			{Kind: assembly.KindTable, Table: &assembly.Table{
				Headers: []string{"Item", "Qty", "Total"},
				Rows:    [][]string{{"Replace_pipe", "3", "150.00"}},
			}},
			{Kind: assembly.KindImage, Image: &assembly.ImageRef{Path: "/img/roof.jpg", Caption: "North side"}},
			{Kind: assembly.KindText, Style: assembly.StyleTotal, Label: "Total", Text: "150.00"},
			{Kind: assembly.KindText, Style: assembly.StyleFooter, Text: "100% checked"},
		},
	}
}

func TestParseTemplate_ValidTemplate(t *testing.T) {
	tmpDir := t.TempDir()
	templatePath := filepath.Join(tmpDir, "test.tex")
	templateContent := `\documentclass{article}
\begin{document}
{{escape .Title}}
\end{document}`
	err := os.WriteFile(templatePath, []byte(templateContent), 0644)
	require.NoError(t, err)

	tmpl, err := parseTemplate(templatePath)
	require.NoError(t, err)
	assert.NotNil(t, tmpl)
}

func TestParseTemplate_InvalidPath(t *testing.T) {
	_, err := parseTemplate("/nonexistent/template.tex")
	assert.Error(t, err)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "template file not found")
}

func TestParseTemplate_InvalidTemplate(t *testing.T) {
	tmpDir := t.TempDir()
	templatePath := filepath.Join(tmpDir, "invalid.tex")
	templateContent := `\documentclass{article}
\begin{document}
{{.InvalidSyntax{{}}
\end{document}`
	err := os.WriteFile(templatePath, []byte(templateContent), 0644)
	require.NoError(t, err)

	_, err = parseTemplate(templatePath)
	assert.Error(t, err)
	var templateErr *TemplateError
	assert.ErrorAs(t, err, &templateErr)
}

func TestBuildTemplateData_EscapesEverything(t *testing.T) {
	r := &LaTeXRenderer{}
	data := r.buildTemplateData(sampleReport())

	assert.Equal(t, `Inspection \#7`, data.Title)
	assert.Equal(t, "David CLM", data.Font)
	assert.Equal(t, "1A4D8F", data.PrimaryColor)
	assert.Equal(t, MarginData{defaultMargin, defaultMargin, defaultMargin, defaultMargin}, data.Margins)
	require.Len(t, data.Blocks, 9)

	assert.Equal(t, `Dana \& Sons`, data.Blocks[1].Text)
	table := data.Blocks[5]
	assert.Equal(t, "|l|l|l|", table.ColumnSpec)
	assert.Equal(t, []string{`Replace\_pipe`, "3", "150.00"}, table.Rows[0])
	assert.Equal(t, "/img/roof.jpg", data.Blocks[6].ImagePath)
	assert.Equal(t, `100\% checked`, data.Blocks[8].Text)
}

func TestBuildTemplateData_LayoutHints(t *testing.T) {
	report := sampleReport()
	report.Layout = &types.LayoutHints{
		PrimaryColor: "#aa3300",
		Margins:      &types.Margins{Top: 20, Left: 30},
	}
	data := (&LaTeXRenderer{Font: "Frank Ruehl CLM"}).buildTemplateData(report)

	assert.Equal(t, "Frank Ruehl CLM", data.Font)
	assert.Equal(t, "AA3300", data.PrimaryColor)
	assert.Equal(t, MarginData{Top: 20, Right: defaultMargin, Bottom: defaultMargin, Left: 30}, data.Margins)
}

func TestBuildTemplateData_DropsEmptyTablesAndImages(t *testing.T) {
	report := &assembly.Report{Instructions: []assembly.Instruction{
		{Kind: assembly.KindTable},
		{Kind: assembly.KindTable, Table: &assembly.Table{}},
		{Kind: assembly.KindImage},
		{Kind: assembly.KindText, Text: "kept"},
	}}
	data := (&LaTeXRenderer{}).buildTemplateData(report)
	require.Len(t, data.Blocks, 1)
	assert.Equal(t, "kept", data.Blocks[0].Text)
}

func TestRenderLaTeX_Document(t *testing.T) {
	out, err := (&LaTeXRenderer{}).RenderLaTeX(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `\documentclass`))
	assert.Contains(t, out, `\setmainfont{David CLM}`)
	assert.Contains(t, out, `\definecolor{primary}{HTML}{1A4D8F}`)
	assert.Contains(t, out, `{\LARGE\bfseries\color{primary} Inspection \#7\par}`)
	assert.Contains(t, out, `\textbf{Client:} Dana \& Sons\par`)
	assert.Contains(t, out, `\newpage`)
	assert.Contains(t, out, `\section*{\color{primary} Roof}`)
	assert.Contains(t, out, `\begin{longtable}{|l|l|l|}`)
	assert.Contains(t, out, `Item & Qty & Total \\`)
	assert.Contains(t, out, `Replace\_pipe & 3 & 150.00 \\`)
	assert.Contains(t, out, `\includegraphics[width=0.8\textwidth,keepaspectratio]{/img/roof.jpg}`)
	assert.Contains(t, out, `\hfill\textbf{Total: 150.00}\par`)
	assert.Contains(t, out, `{\footnotesize 100\% checked\par}`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), `\end{document}`))
}

func TestRenderLaTeX_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tex")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Title}}|{{len .Blocks}}`), 0644))

	out, err := (&LaTeXRenderer{TemplatePath: path}).RenderLaTeX(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, `Inspection \#7|9`, out)
}

func TestRenderLaTeX_ExecutionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tex")
	require.NoError(t, os.WriteFile(path, []byte(`{{.Missing}}`), 0644))

	_, err := (&LaTeXRenderer{TemplatePath: path}).RenderLaTeX(sampleReport())
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "failed to execute template")
}
