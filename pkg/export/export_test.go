package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Event", "Hall", "Status"},
		Rows: []map[string]string{
			{"Event": "Science Fair, 2026", "Hall": "Main Auditorium", "Status": "approved"},
			{"Event": "Debate", "Hall": "Seminar Hall", "Status": "pending"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVQuotesValues(t *testing.T) {
	out, err := RendererFor(FormatCSV).Render(sampleDataset(), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "Event,Hall,Status\n\"Science Fair, 2026\",Main Auditorium,approved\nDebate,Seminar Hall,pending\n", string(out))
}

func TestPDFRendersDocument(t *testing.T) {
	out, err := RendererFor(FormatPDF).Render(sampleDataset(), "Bookings")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset())
	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, pdfUsableWidth, sum, 0.001)
	assert.Greater(t, widths[0], widths[2])
}
