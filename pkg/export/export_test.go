package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title: "Disponibilidad",
		Columns: []Column{
			{Key: "fecha", Title: "Fecha"},
			{Key: "id_categoria", Title: "Categoría", Numeric: true},
			{Key: "disponible", Title: "Disponible", Numeric: true},
		},
		Rows: []map[string]string{
			{"fecha": "2024-01-01", "id_categoria": "5", "disponible": "80"},
		},
	}
}

func TestCSVExporterUsesColumnOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "fecha,id_categoria,disponible\n2024-01-01,5,80\n", string(out))
}

func TestPDFExporterProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.IsType(t, &PDFExporter{}, RendererFor(f))

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}
