package observability

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/templates"
	"github.com/jonathan/inspection-reports/internal/types"
)

func TestPrintReportSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := &assembly.Report{
		JobID:       "job-1",
		TemplateID:  "apartment",
		RightToLeft: true,
		Instructions: []assembly.Instruction{
			{Kind: assembly.KindText, Style: assembly.StyleTitle, Text: "Report"},
			{Kind: assembly.KindPageBreak},
			{Kind: assembly.KindText, Style: assembly.StyleHeading, Text: "Roof"},
			{Kind: assembly.KindTable, Table: &assembly.Table{}},
			{Kind: assembly.KindImage, Image: &assembly.ImageRef{Path: "a.jpg"}},
		},
		Skipped: []assembly.Skip{{SectionID: "roof", FieldID: "area", Reason: "required value is empty"}},
	}

	p.PrintReportSummary(report)
	output := buf.String()

	assert.Contains(t, output, "ASSEMBLED REPORT")
	assert.Contains(t, output, "job-1")
	assert.Contains(t, output, "apartment")
	assert.Contains(t, output, "rtl")
	assert.Contains(t, output, "Instructions: 5 (text 2, tables 1, images 1, page breaks 1)")
	assert.Contains(t, output, "• Roof")
	assert.Contains(t, output, "SKIPPED")
	assert.Contains(t, output, "roof/area")
}

func TestPrintReportSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReportSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintReportSummary_TruncatesSections(t *testing.T) {
	var buf bytes.Buffer
	report := &assembly.Report{}
	for i := 0; i < 8; i++ {
		report.Instructions = append(report.Instructions, assembly.Instruction{
			Kind: assembly.KindText, Style: assembly.StyleHeading, Text: fmt.Sprintf("Section %d", i),
		})
	}

	NewPrinter(&buf).PrintReportSummary(report)
	output := buf.String()

	assert.Contains(t, output, "Section 4")
	assert.NotContains(t, output, "Section 5")
	assert.Contains(t, output, "... and 3 more")
	assert.NotContains(t, output, "SKIPPED")
}

func TestPrintSkipped_GroupsByReason(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkipped([]assembly.Skip{
		{SectionID: "a", FieldID: "x", Reason: "required value is empty"},
		{SectionID: "b", FieldID: "y", Reason: "required value is empty"},
		{Reason: "job document is corrupt"},
	})
	output := buf.String()

	assert.Contains(t, output, "required value is empty (2)")
	assert.Contains(t, output, "job document is corrupt (1)")
	assert.Contains(t, output, "(report)")
	// reasons are sorted
	assert.Less(t, strings.Index(output, "job document"), strings.Index(output, "required value"))
}

func TestPrintSkipped_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkipped(nil)
	assert.Empty(t, buf.String())
}

func TestPrintTemplateResult(t *testing.T) {
	var buf bytes.Buffer
	result := &templates.Result{
		Template: &types.TemplateDocument{
			ID: "apartment", Name: "Apartment", Version: 3,
			Sections: []types.Section{
				{ID: "general", Order: 1, Fields: []types.FieldSchema{{ID: "area"}}},
				{ID: "findings", Order: 2, Layout: types.LayoutFindings},
			},
		},
		Warnings: []templates.Warning{{SectionID: "general", FieldID: "x", Message: "duplicate field id"}},
	}

	NewPrinter(&buf).PrintTemplateResult(result)
	output := buf.String()

	assert.Contains(t, output, "TEMPLATE")
	assert.Contains(t, output, "Version:  3")
	assert.Contains(t, output, "general [fields] 1 fields")
	assert.Contains(t, output, "findings [findings] 0 fields")
	assert.Contains(t, output, "Warnings: 1")
	assert.Contains(t, output, "duplicate field id")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("ש", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", slog.String("job_id", "job-1"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "job_id=job-1")
}
