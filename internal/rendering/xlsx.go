package rendering

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/inspection-reports/internal/assembly"
	"github.com/jonathan/inspection-reports/internal/bidi"
)

// SheetName is the worksheet the report is written to.
const SheetName = "Report"

// XLSXRenderer writes a report as a single-sheet workbook. Text goes in
// columns A (label) and B (value); tables start at column A.
type XLSXRenderer struct {
	// EmbedImages inserts image files that exist on disk. Otherwise, or when
	// a file is missing, the path is written as text.
	EmbedImages bool
}

// ContentType implements Renderer.
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (r *XLSXRenderer) Extension() string { return ".xlsx" }

// Render implements Renderer.
func (r *XLSXRenderer) Render(w io.Writer, report *assembly.Report) error {
	f, err := r.Build(report)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return &RenderError{Format: "xlsx", Message: "failed to write workbook", Cause: err}
	}
	return nil
}

type xlsxStyles struct {
	title, heading, subheading, label, header, cell, total, footer int
}

func newXLSXStyles(f *excelize.File, color string) (*xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "CCCCCC", Style: 1},
		{Type: "right", Color: "CCCCCC", Style: 1},
		{Type: "top", Color: "CCCCCC", Style: 1},
		{Type: "bottom", Color: "CCCCCC", Style: 1},
	}
	s := &xlsxStyles{}
	defs := map[*int]*excelize.Style{
		&s.title:      {Font: &excelize.Font{Bold: true, Size: 16, Color: color}},
		&s.heading:    {Font: &excelize.Font{Bold: true, Size: 13, Color: color}},
		&s.subheading: {Font: &excelize.Font{Bold: true, Size: 11}},
		&s.label:      {Font: &excelize.Font{Bold: true}},
		&s.header: {
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    border,
		},
		&s.cell:   {Border: border},
		&s.total:  {Font: &excelize.Font{Bold: true}},
		&s.footer: {Font: &excelize.Font{Italic: true, Size: 9}},
	}
	for dst, style := range defs {
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, err
		}
		*dst = id
	}
	return s, nil
}

// Build lays the report out in a new workbook. The caller closes it.
func (r *XLSXRenderer) Build(report *assembly.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	fail := func(msg string, err error) (*excelize.File, error) {
		_ = f.Close()
		return nil, &RenderError{Format: "xlsx", Message: msg, Cause: err}
	}

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fail("failed to create sheet", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fail("failed to remove default sheet", err)
	}

	color := "1A4D8F"
	if report.Layout != nil {
		if c := strings.TrimPrefix(report.Layout.PrimaryColor, "#"); len(c) == 6 {
			color = strings.ToUpper(c)
		}
	}
	styles, err := newXLSXStyles(f, color)
	if err != nil {
		return fail("failed to create styles", err)
	}

	w := &sheetWriter{f: f, styles: styles, row: 1, embedImages: r.EmbedImages}
	for _, in := range report.Instructions {
		if err := w.write(in); err != nil {
			return fail(fmt.Sprintf("failed to write %s instruction", in.Kind), err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 28); err != nil {
		return fail("failed to size columns", err)
	}
	if err := f.SetColWidth(SheetName, "B", "F", 20); err != nil {
		return fail("failed to size columns", err)
	}
	return f, nil
}

type sheetWriter struct {
	f           *excelize.File
	styles      *xlsxStyles
	row         int
	embedImages bool
}

func (w *sheetWriter) cell(col int) string {
	name, _ := excelize.CoordinatesToCellName(col, w.row)
	return name
}

func (w *sheetWriter) set(col int, value interface{}, style int) error {
	cell := w.cell(col)
	if err := w.f.SetCellValue(SheetName, cell, value); err != nil {
		return err
	}
	return w.f.SetCellStyle(SheetName, cell, cell, style)
}

func (w *sheetWriter) write(in assembly.Instruction) error {
	switch in.Kind {
	case assembly.KindPageBreak:
		if w.row > 1 {
			return w.f.InsertPageBreak(SheetName, w.cell(1))
		}
		return nil
	case assembly.KindTable:
		return w.table(in.Table)
	case assembly.KindImage:
		return w.image(in.Image)
	default:
		return w.text(in)
	}
}

func (w *sheetWriter) text(in assembly.Instruction) error {
	label := bidi.StripMarkers(in.Label)
	text := bidi.StripMarkers(in.Text)
	var err error
	switch in.Style {
	case assembly.StyleTitle:
		err = w.set(1, text, w.styles.title)
	case assembly.StyleHeading:
		w.row++
		err = w.set(1, text, w.styles.heading)
	case assembly.StyleSubheading, assembly.StyleFinding:
		err = w.set(1, text, w.styles.subheading)
	case assembly.StyleTotal:
		if err = w.set(1, label, w.styles.total); err == nil {
			err = w.set(2, text, w.styles.total)
		}
	case assembly.StyleFooter:
		w.row++
		err = w.set(1, text, w.styles.footer)
	default:
		if label == "" {
			err = w.f.SetCellValue(SheetName, w.cell(1), text)
			break
		}
		if err = w.set(1, label, w.styles.label); err == nil {
			err = w.f.SetCellValue(SheetName, w.cell(2), text)
		}
	}
	w.row++
	return err
}

func (w *sheetWriter) table(t *assembly.Table) error {
	if t == nil {
		return nil
	}
	for col, h := range t.Headers {
		if err := w.set(col+1, h, w.styles.header); err != nil {
			return err
		}
	}
	w.row++
	for _, row := range t.Rows {
		for col, value := range row {
			if err := w.set(col+1, value, w.styles.cell); err != nil {
				return err
			}
		}
		w.row++
	}
	w.row++
	return nil
}

func (w *sheetWriter) image(img *assembly.ImageRef) error {
	if img == nil {
		return nil
	}
	if w.embedImages {
		if _, err := os.Stat(img.Path); err == nil {
			if err := w.f.AddPicture(SheetName, w.cell(1), img.Path, &excelize.GraphicOptions{
				LockAspectRatio: true,
				ScaleX:          0.5,
				ScaleY:          0.5,
			}); err == nil {
				// leave room below the picture
				w.row += 15
				return w.caption(img)
			}
		}
	}
	if err := w.f.SetCellValue(SheetName, w.cell(1), img.Path); err != nil {
		return err
	}
	w.row++
	return w.caption(img)
}

func (w *sheetWriter) caption(img *assembly.ImageRef) error {
	if img.Caption == "" {
		return nil
	}
	if err := w.set(1, bidi.StripMarkers(img.Caption), w.styles.footer); err != nil {
		return err
	}
	w.row++
	return nil
}
