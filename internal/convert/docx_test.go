package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// fakeOffice stands in for the LibreOffice runner.
type fakeOffice struct {
	availableErr error
	convertErr   error
	pdfBytes     []byte
	producedName string // overrides the stem derived name

	gotInput string
}

func (f *fakeOffice) Available() error { return f.availableErr }

func (f *fakeOffice) ConvertToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	f.gotInput = inputPath
	if f.convertErr != nil {
		return "", f.convertErr
	}

	name := f.producedName
	if name == "" {
		stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		name = stem + ".pdf"
	}
	produced := filepath.Join(outDir, name)
	if err := os.WriteFile(produced, f.pdfBytes, 0o600); err != nil {
		return "", err
	}
	return produced, nil
}

const fixtureContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const fixtureRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const fixtureDocRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// fixtureDocxFile writes a minimal Word document containing the given
// paragraphs.
func fixtureDocxFile(t *testing.T, dir string, paragraphs ...string) string {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>")
		body.WriteString(p)
		body.WriteString("</w:t></w:r></w:p>")
	}
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml":          fixtureContentTypes,
		"_rels/.rels":                  fixtureRels,
		"word/_rels/document.xml.rels": fixtureDocRels,
		"word/document.xml":            documentXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "fixture.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestDocxConverterOfficeEngine(t *testing.T) {
	runner := &fakeOffice{pdfBytes: fixturePDFBytes(t)}
	c := NewDocxConverter(config.DocxEngineOffice, runner)

	assert.Equal(t, document.FormatDOCX, c.Format())
	assert.NoError(t, c.Available())

	in, out := stagedInput(t, "minutes.docx", []byte("PK\x03\x04"))
	require.NoError(t, c.Convert(context.Background(), in, out))

	assert.Equal(t, in, runner.gotInput)
	requirePDF(t, out)
}

func TestDocxConverterRenamesMismatchedOutput(t *testing.T) {
	runner := &fakeOffice{pdfBytes: fixturePDFBytes(t), producedName: "weird name.pdf"}
	c := NewDocxConverter(config.DocxEngineOffice, runner)

	in, out := stagedInput(t, "minutes.docx", []byte("PK\x03\x04"))
	require.NoError(t, c.Convert(context.Background(), in, out))
	requirePDF(t, out)
}

func TestDocxConverterOfficeUnavailable(t *testing.T) {
	runner := &fakeOffice{availableErr: domain.DependencyError("LibreOffice missing", nil, "install it")}
	c := NewDocxConverter(config.DocxEngineOffice, runner)

	err := c.Available()
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeDependency, domain.TypeOf(err))
}

func TestDocxConverterOfficeFailurePropagates(t *testing.T) {
	runner := &fakeOffice{convertErr: domain.ConversionError("LibreOffice failed", nil)}
	c := NewDocxConverter(config.DocxEngineOffice, runner)

	in, out := stagedInput(t, "minutes.docx", []byte("PK\x03\x04"))
	err := c.Convert(context.Background(), in, out)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
}

func TestDocxConverterEmbeddedEngine(t *testing.T) {
	c := NewDocxConverter(config.DocxEngineEmbedded, nil)
	assert.NoError(t, c.Available(), "embedded engine needs no external tools")

	dir := t.TempDir()
	in := fixtureDocxFile(t, dir, "First paragraph.", "Second paragraph with more words in it.")
	out := filepath.Join(dir, "fixture.pdf")

	require.NoError(t, c.Convert(context.Background(), in, out))
	assert.GreaterOrEqual(t, requirePDF(t, out), 1)
}

func TestDocxConverterEmbeddedRejectsCorruptInput(t *testing.T) {
	c := NewDocxConverter(config.DocxEngineEmbedded, nil)

	in, out := stagedInput(t, "broken.docx", []byte("PK\x03\x04 not a real zip"))
	err := c.Convert(context.Background(), in, out)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
}
