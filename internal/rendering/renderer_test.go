package rendering

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/inspection-reports/internal/assembly"
)

func TestForFormat(t *testing.T) {
	tests := []struct {
		format    string
		extension string
	}{
		{"json", ".json"},
		{"tex", ".tex"},
		{"LaTeX", ".tex"},
		{".xlsx", ".xlsx"},
		{"excel", ".xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := ForFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.extension, r.Extension())
			assert.NotEmpty(t, r.ContentType())
		})
	}
}

func TestForFormat_Unsupported(t *testing.T) {
	_, err := ForFormat("pdf")
	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "pdf", unsupported.Format)
}

func TestForFormat_EveryListedFormat(t *testing.T) {
	for _, format := range Formats {
		_, err := ForFormat(format)
		assert.NoError(t, err, format)
	}
}

func TestJSONRenderer_RoundTripsInstructions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&buf, sampleReport()))

	var decoded assembly.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "job-1", decoded.JobID)
	assert.Equal(t, 1, decoded.Count(assembly.KindTable))
	assert.Equal(t, 1, decoded.Count(assembly.KindPageBreak))
	// no HTML escaping of ampersands
	assert.Contains(t, buf.String(), "Dana & Sons")
}
