package rendering

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/inspection-reports/internal/assembly"
)

func renderWorkbook(t *testing.T, r *XLSXRenderer, report *assembly.Report) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, report))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, cell)
	require.NoError(t, err)
	return v
}

func TestXLSXRenderer_Layout(t *testing.T) {
	f := renderWorkbook(t, &XLSXRenderer{}, sampleReport())

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	// title, meta, (page break), blank, heading, field
	assert.Equal(t, "Inspection #7", cellValue(t, f, "A1"))
	assert.Equal(t, "Client", cellValue(t, f, "A2"))
	assert.Equal(t, "Dana & Sons", cellValue(t, f, "B2"))
	assert.Equal(t, "Roof", cellValue(t, f, "A4"))
	assert.Equal(t, "Area", cellValue(t, f, "A5"))
	assert.Equal(t, "1,234.5", cellValue(t, f, "B5"))

	// table header then one row
	assert.Equal(t, "Item", cellValue(t, f, "A6"))
	assert.Equal(t, "Total", cellValue(t, f, "C6"))
	assert.Equal(t, "Replace_pipe", cellValue(t, f, "A7"))
	assert.Equal(t, "150.00", cellValue(t, f, "C7"))

	// image written as path with caption below
	assert.Equal(t, "/img/roof.jpg", cellValue(t, f, "A9"))
	assert.Equal(t, "North side", cellValue(t, f, "A10"))

	assert.Equal(t, "Total", cellValue(t, f, "A11"))
	assert.Equal(t, "150.00", cellValue(t, f, "B11"))
	assert.Equal(t, "100% checked", cellValue(t, f, "A13"))
}

func TestXLSXRenderer_HeaderStyle(t *testing.T) {
	f := renderWorkbook(t, &XLSXRenderer{}, sampleReport())

	styleID, err := f.GetCellStyle(SheetName, "A6")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 1, style.Fill.Pattern)
}

func TestXLSXRenderer_StripsDirectionMarkers(t *testing.T) {
	report := &assembly.Report{Instructions: []assembly.Instruction{
		{Kind: assembly.KindText, Style: assembly.StyleBody, Text: "\u202aabc\u202c"},
	}}
	f := renderWorkbook(t, &XLSXRenderer{}, report)
	assert.Equal(t, "abc", cellValue(t, f, "A1"))
}

func TestXLSXRenderer_EmbedsExistingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(out, img))
	require.NoError(t, out.Close())

	report := &assembly.Report{Instructions: []assembly.Instruction{
		{Kind: assembly.KindImage, Image: &assembly.ImageRef{Path: path}},
		{Kind: assembly.KindImage, Image: &assembly.ImageRef{Path: "/missing.png"}},
	}}
	f := renderWorkbook(t, &XLSXRenderer{EmbedImages: true}, report)

	pics, err := f.GetPictures(SheetName, "A1")
	require.NoError(t, err)
	assert.Len(t, pics, 1)
	assert.Equal(t, "/missing.png", cellValue(t, f, "A16"))
}

func TestXLSXRenderer_EmptyReport(t *testing.T) {
	f := renderWorkbook(t, &XLSXRenderer{}, &assembly.Report{})
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
