// Package observability provides formatted output utilities for verbose CLI
// mode and the process logger.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/bidi"
	"github.com/jonathan/inspection-reports/internal/templates"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if utf8.RuneCountInString(line) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReportSummary outputs instruction counts and the sections of an
// assembled report.
func (p *Printer) PrintReportSummary(report *assembly.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:       %s\n", report.JobID))
	sb.WriteString(fmt.Sprintf("Template:  %s\n", report.TemplateID))
	direction := "ltr"
	if report.RightToLeft {
		direction = "rtl"
	}
	sb.WriteString(fmt.Sprintf("Direction: %s\n", direction))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Instructions: %d (text %d, tables %d, images %d, page breaks %d)\n",
		len(report.Instructions),
		report.Count(assembly.KindText),
		report.Count(assembly.KindTable),
		report.Count(assembly.KindImage),
		report.Count(assembly.KindPageBreak),
	))

	var sections []string
	for _, in := range report.Instructions {
		if in.Style == assembly.StyleHeading {
			// headings are in visual order
			sections = append(sections, bidi.StripMarkers(in.Text))
		}
	}
	if len(sections) > 0 {
		sb.WriteString("\nSections:\n")
		count := min(len(sections), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", sections[i]))
		}
		if len(sections) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(sections)-maxItemsToShow))
		}
	}

	if len(report.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkipped: %d (see below)\n", len(report.Skipped)))
	}

	p.printBox("ASSEMBLED REPORT", strings.TrimSuffix(sb.String(), "\n"))
	p.PrintSkipped(report.Skipped)
}

// PrintSkipped outputs the parts of a template left out of a report,
// grouped by reason.
func (p *Printer) PrintSkipped(skipped []assembly.Skip) {
	if len(skipped) == 0 {
		return
	}

	byReason := make(map[string][]string)
	for _, s := range skipped {
		where := s.SectionID
		if s.FieldID != "" {
			where += "/" + s.FieldID
		}
		if where == "" {
			where = "(report)"
		}
		byReason[s.Reason] = append(byReason[s.Reason], where)
	}
	reasons := make([]string, 0, len(byReason))
	for r := range byReason {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)

	var sb strings.Builder
	for i, reason := range reasons {
		places := byReason[reason]
		sb.WriteString(fmt.Sprintf("%s (%d)\n", reason, len(places)))
		count := min(len(places), maxItemsToShow)
		for j := 0; j < count; j++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", places[j]))
		}
		if len(places) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(places)-maxItemsToShow))
		}
		if i < len(reasons)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SKIPPED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplateResult outputs a parsed template's outline and its warnings.
func (p *Printer) PrintTemplateResult(result *templates.Result) {
	if result == nil || result.Template == nil {
		return
	}
	tpl := result.Template

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", tpl.ID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", tpl.Name))
	sb.WriteString(fmt.Sprintf("Version:  %d\n", tpl.Version))
	sb.WriteString(fmt.Sprintf("Sections: %d\n", len(tpl.Sections)))
	sb.WriteString("\n")

	for _, section := range tpl.OrderedSections() {
		sb.WriteString(fmt.Sprintf("  • %s [%s] %d fields\n", section.ID, section.EffectiveLayout(), len(section.Fields)))
	}

	if len(result.Warnings) > 0 {
		sb.WriteString(fmt.Sprintf("\nWarnings: %d\n", len(result.Warnings)))
		for _, w := range result.Warnings {
			sb.WriteString(fmt.Sprintf("  ! %s\n", w.String()))
		}
	}

	p.printBox("TEMPLATE", strings.TrimSuffix(sb.String(), "\n"))
}
