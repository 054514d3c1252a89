package pdf

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
)

func fixturePDF(t *testing.T, pages int) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.MultiCell(0, 5, "verification fixture", "", "", false)
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestVerify(t *testing.T) {
	pages, err := Verify(fixturePDF(t, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)

	pages, err = Verify(fixturePDF(t, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestVerifyRejectsBadOutput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "not a pdf", data: []byte("<html>oops</html>")},
		{name: "truncated", data: []byte("%PDF-1.4\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify(tt.data)
			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
		})
	}
}
