package assembly

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jonathan/inspection-reports/internal/bidi"
	"github.com/jonathan/inspection-reports/internal/jobdata"
	"github.com/jonathan/inspection-reports/internal/types"
)

// builder accumulates the instructions of one report.
type builder struct {
	job        *types.Job
	template   *types.TemplateDocument
	doc        *jobdata.Document
	content    types.CustomContent
	images     map[string][]types.Image
	rtl        bool
	labels     Labels
	dateLayout string
	printer    *message.Printer
	logger     *slog.Logger
	report     *Report
}

func (b *builder) shape(s string) string {
	if !b.rtl {
		return s
	}
	return bidi.Visual(s)
}

func (b *builder) shapeMixed(s string) string {
	if !b.rtl {
		return s
	}
	return bidi.VisualMixed(s)
}

func (b *builder) emit(in Instruction) {
	b.report.Instructions = append(b.report.Instructions, in)
}

func (b *builder) text(style Style, sectionID, fieldID, label, text string) {
	b.emit(Instruction{
		Kind:      KindText,
		Style:     style,
		SectionID: sectionID,
		FieldID:   fieldID,
		Label:     b.shape(label),
		Text:      b.shape(text),
	})
}

func (b *builder) image(sectionID, fieldID, path, caption string) {
	b.emit(Instruction{
		Kind:      KindImage,
		SectionID: sectionID,
		FieldID:   fieldID,
		Image:     &ImageRef{Path: path, Caption: b.shape(caption)},
	})
}

func (b *builder) table(sectionID, fieldID string, headers []string, rows [][]string) {
	t := &Table{Headers: make([]string, len(headers)), Rows: make([][]string, len(rows))}
	for i, h := range headers {
		t.Headers[i] = b.shape(h)
	}
	for i, row := range rows {
		shaped := make([]string, len(row))
		for j, cell := range row {
			shaped[j] = b.shape(cell)
		}
		t.Rows[i] = shaped
	}
	b.emit(Instruction{Kind: KindTable, SectionID: sectionID, FieldID: fieldID, Table: t})
}

func (b *builder) skip(sectionID, fieldID, reason string) {
	b.report.Skipped = append(b.report.Skipped, Skip{SectionID: sectionID, FieldID: fieldID, Reason: reason})
	b.logger.Debug("skipped report content",
		slog.String("job_id", b.job.ID),
		slog.String("section_id", sectionID),
		slog.String("field_id", fieldID),
		slog.String("reason", reason))
}

func (b *builder) formatNumber(v float64) string {
	return b.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func (b *builder) formatMoney(v float64) string {
	return b.printer.Sprint(number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func (b *builder) formatDate(value string) string {
	if d, ok := jobdata.ParseDate(value); ok {
		return d.Format(b.dateLayout)
	}
	return value
}

func (b *builder) header() {
	if path := b.content.HeaderImagePath; path != "" {
		b.image("", "", path, "")
	}
	b.text(StyleTitle, "", "", "", b.report.Title)

	meta := []struct{ id, label, value string }{
		{"client_name", b.labels.ClientName, b.job.ClientName},
		{"address", b.labels.Address, b.job.Address},
		{"inspection_date", b.labels.InspectionDate, b.formatDate(b.job.InspectionDate)},
	}
	for _, m := range meta {
		if m.value != "" {
			b.text(StyleMeta, "", m.id, m.label, m.value)
		}
	}
}

func (b *builder) footer() {
	if d := b.content.Disclaimer; d != "" {
		b.emit(Instruction{Kind: KindText, Style: StyleFooter, Text: b.shapeMixed(d)})
	}
}

func (b *builder) section(s types.Section) {
	if s.PageBreakBefore {
		b.emit(Instruction{Kind: KindPageBreak, SectionID: s.ID})
	}
	if s.Title != "" {
		b.text(StyleHeading, s.ID, "", "", s.Title)
	}
	for _, item := range b.content.SectionItems(s.ID) {
		if strings.TrimSpace(item.Text) != "" {
			b.text(StyleBody, s.ID, "", "", item.Text)
		}
	}

	switch s.EffectiveLayout() {
	case types.LayoutFindings:
		b.fields(s)
		b.findings(s)
	case types.LayoutInvoice:
		b.fields(s)
		b.invoice(s)
	case types.LayoutInspector:
		b.inspector(s)
		b.fields(s)
	default:
		b.fields(s)
	}
	b.workItems(s)
}

func (b *builder) fields(s types.Section) {
	imagesDone := false
	for _, f := range s.Fields {
		value := b.doc.Get(s.ID, f.ID)
		present := value != ""
		switch f.Kind() {
		case types.KindText, types.KindTextArea, types.KindDropdown:
			if present {
				b.text(StyleField, s.ID, f.ID, f.Label, value)
			}
		case types.KindNumber:
			if !present {
				break
			}
			if v, ok := jobdata.ParseNumber(value); ok {
				value = b.formatNumber(v)
			}
			b.text(StyleField, s.ID, f.ID, f.Label, value)
		case types.KindCheckbox:
			if !present {
				break
			}
			answer := b.labels.No
			if jobdata.ParseBool(value) {
				answer = b.labels.Yes
			}
			b.text(StyleField, s.ID, f.ID, f.Label, answer)
		case types.KindDate:
			if present {
				b.text(StyleField, s.ID, f.ID, f.Label, b.formatDate(value))
			}
		case types.KindImage:
			// images belong to the section, so only the first image field shows them
			present = imagesDone || b.sectionImages(s.ID, f)
			imagesDone = true
		case types.KindTable:
			present = b.tableField(s.ID, f, value)
		default:
			b.skip(s.ID, f.ID, fmt.Sprintf("unsupported field kind %q: %s", f.RawKind(), f.UnknownReason()))
			continue
		}
		if f.Required && !present {
			b.skip(s.ID, f.ID, "required value is empty")
		}
	}
}

// sectionImages emits the section's images, capped by the field's
// MaxImages when set. It reports whether any were emitted.
func (b *builder) sectionImages(sectionID string, f types.FieldSchema) bool {
	images := b.images[sectionID]
	if f.MaxImages > 0 && len(images) > f.MaxImages {
		b.skip(sectionID, f.ID, fmt.Sprintf("%d images over the limit of %d", len(images)-f.MaxImages, f.MaxImages))
		images = images[:f.MaxImages]
	}
	for _, img := range images {
		b.image(sectionID, f.ID, img.FilePath, img.Caption)
	}
	return len(images) > 0
}

func (b *builder) tableField(sectionID string, f types.FieldSchema, value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	rows, err := parseTableRows(value, f.Columns)
	if err != nil {
		b.skip(sectionID, f.ID, err.Error())
		return true
	}
	if len(rows) == 0 {
		return false
	}
	headers := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		headers[i] = c.Label
		if headers[i] == "" {
			headers[i] = c.ID
		}
	}
	if f.Label != "" {
		b.text(StyleField, sectionID, f.ID, f.Label, "")
	}
	b.table(sectionID, f.ID, headers, rows)
	return true
}

// parseTableRows accepts either an array of objects keyed by column id or
// an array of arrays in column order.
func parseTableRows(value string, columns []types.TableColumn) ([][]string, error) {
	var objects []map[string]interface{}
	if err := json.Unmarshal([]byte(value), &objects); err == nil {
		rows := make([][]string, 0, len(objects))
		for _, obj := range objects {
			row := make([]string, len(columns))
			for i, c := range columns {
				row[i] = cellText(obj[c.ID])
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	var arrays [][]interface{}
	if err := json.Unmarshal([]byte(value), &arrays); err != nil {
		return nil, errors.New("table value is not a JSON array of rows")
	}
	rows := make([][]string, 0, len(arrays))
	for _, arr := range arrays {
		row := make([]string, len(columns))
		for i := range row {
			if i < len(arr) {
				row[i] = cellText(arr[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return jobdata.FormatNumber(t)
	default:
		return fmt.Sprint(t)
	}
}

func (b *builder) findings(s types.Section) {
	categories := b.doc.Categories()
	var grandTotal float64
	if len(categories) == 0 {
		grandTotal = b.findingList(s.ID, b.doc.LegacyFindings())
	}
	for _, c := range categories {
		b.text(StyleSubheading, s.ID, c.ID, "", c.Title)
		grandTotal += b.findingList(s.ID, c.Findings)
	}
	if grandTotal > 0 {
		b.text(StyleTotal, s.ID, "", b.labels.Total, b.formatMoney(grandTotal))
	}
}

// findingList emits findings with their recommendations and images and
// returns the sum of the recommendation totals.
func (b *builder) findingList(sectionID string, findings []types.Finding) float64 {
	var sum float64
	for _, f := range findings {
		if f.Subject != "" {
			b.text(StyleFinding, sectionID, f.ID, "", f.Subject)
		}
		if f.Description != "" {
			b.text(StyleBody, sectionID, f.ID, "", f.Description)
		}
		if f.Note != "" {
			b.text(StyleBody, sectionID, f.ID, b.labels.Note, f.Note)
		}
		if len(f.Recommendations) > 0 {
			rows := make([][]string, 0, len(f.Recommendations))
			for _, r := range f.Recommendations {
				rows = append(rows, []string{
					r.Description,
					b.formatNumber(r.Quantity),
					r.Unit,
					b.formatMoney(r.PricePerUnit),
					b.formatMoney(r.TotalPrice),
				})
				sum += r.TotalPrice
			}
			b.table(sectionID, f.ID, b.itemHeaders(), rows)
		}
		for _, img := range b.images[f.ID] {
			b.image(sectionID, f.ID, img.FilePath, img.Caption)
		}
	}
	return sum
}

func (b *builder) itemHeaders() []string {
	return []string{b.labels.Description, b.labels.Quantity, b.labels.Unit, b.labels.UnitPrice, b.labels.Total}
}

func (b *builder) itemRows(items []jobdata.LineItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			it.Description,
			b.numeric(it.Quantity, b.formatNumber),
			it.Unit,
			b.numeric(it.UnitPrice, b.formatMoney),
			b.formatMoney(it.Amount()),
		})
	}
	return rows
}

func (b *builder) numeric(value string, format func(float64) string) string {
	if v, ok := jobdata.ParseNumber(value); ok {
		return format(v)
	}
	return value
}

func (b *builder) invoice(s types.Section) {
	list := jobdata.InvoiceItems(b.doc, s.ID)
	items := list.Items()
	if len(items) == 0 {
		return
	}
	b.table(s.ID, jobdata.InvoicePrefix, b.itemHeaders(), b.itemRows(items))

	totals := jobdata.ComputeTotals(items, list.VATRate())
	b.text(StyleTotal, s.ID, jobdata.FieldSubtotal, b.labels.Subtotal, b.formatMoney(totals.Subtotal))
	b.text(StyleTotal, s.ID, jobdata.FieldVATAmount,
		fmt.Sprintf("%s (%s%%)", b.labels.VAT, b.formatNumber(totals.VATRate)), b.formatMoney(totals.VATAmount))
	b.text(StyleTotal, s.ID, jobdata.FieldTotalWithVAT, b.labels.TotalWithVAT, b.formatMoney(totals.TotalWithVAT))
}

func (b *builder) workItems(s types.Section) {
	list := jobdata.WorkItems(b.doc, s.ID)
	items := list.Items()
	if len(items) == 0 {
		return
	}
	b.text(StyleSubheading, s.ID, jobdata.WorkItemPrefix, "", b.labels.WorkItems)
	b.table(s.ID, jobdata.WorkItemPrefix, b.itemHeaders(), b.itemRows(items))
	totals := jobdata.ComputeTotals(items, list.VATRate())
	b.text(StyleTotal, s.ID, jobdata.WorkItemPrefix, b.labels.Subtotal, b.formatMoney(totals.Subtotal))
}

func (b *builder) inspector(s types.Section) {
	c := b.content
	if c.InspectorName == "" && c.ExperienceTitle == "" && c.ExperienceText == "" && c.CertificateImagePath == "" {
		b.skip(s.ID, "", "no inspector details")
		return
	}
	if c.InspectorName != "" {
		b.text(StyleSubheading, s.ID, "inspector_name", "", c.InspectorName)
	}
	if c.ExperienceTitle != "" {
		b.text(StyleFinding, s.ID, "experience_title", "", c.ExperienceTitle)
	}
	if c.ExperienceText != "" {
		b.text(StyleBody, s.ID, "experience_text", "", c.ExperienceText)
	}
	if c.CertificateImagePath != "" {
		b.image(s.ID, "certificate", c.CertificateImagePath, "")
	}
}
