package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/pdf"
)

// requirePDF reads the file and asserts it verifies as a PDF,
// returning the page count.
func requirePDF(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	pages, err := pdf.Verify(data)
	require.NoError(t, err)
	return pages
}

func stagedInput(t *testing.T, name string, data []byte) (inputPath, outputPath string) {
	t.Helper()

	dir := t.TempDir()
	inputPath = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(inputPath, data, 0o600))
	stem := name[:len(name)-len(filepath.Ext(name))]
	outputPath = filepath.Join(dir, stem+".pdf")
	return inputPath, outputPath
}

func TestTextConverter(t *testing.T) {
	c := NewTextConverter()
	assert.NoError(t, c.Available())

	in, out := stagedInput(t, "notes.txt", []byte("first paragraph\n\nsecond paragraph\nwith two lines"))
	require.NoError(t, c.Convert(context.Background(), in, out))

	pages := requirePDF(t, out)
	assert.GreaterOrEqual(t, pages, 1)
}

func TestTextConverterLatin1Fallback(t *testing.T) {
	c := NewTextConverter()

	// "café" in Latin-1, not valid UTF-8.
	in, out := stagedInput(t, "caf.txt", []byte{'c', 'a', 'f', 0xE9, '\n'})
	require.NoError(t, c.Convert(context.Background(), in, out))
	requirePDF(t, out)
}

func TestTextConverterLongInputPaginates(t *testing.T) {
	c := NewTextConverter()

	var text []byte
	for i := 0; i < 400; i++ {
		text = append(text, []byte("a line of text that fills the page\n")...)
	}
	in, out := stagedInput(t, "long.txt", text)
	require.NoError(t, c.Convert(context.Background(), in, out))

	assert.Greater(t, requirePDF(t, out), 1)
}

func TestTextConverterCanceledContext(t *testing.T) {
	c := NewTextConverter()
	in, out := stagedInput(t, "notes.txt", []byte("text"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Convert(ctx, in, out)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
}

func TestTextConverterMissingInput(t *testing.T) {
	c := NewTextConverter()

	err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "gone.txt"), filepath.Join(t.TempDir(), "out.pdf"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeIO, domain.TypeOf(err))
}
