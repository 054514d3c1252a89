package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/scratch"
)

// fixturePDFBytes returns a small real PDF that passes verification.
func fixturePDFBytes(t *testing.T) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 5, "fixture", "", "", false)

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// stubConverter implements Converter with canned behavior.
type stubConverter struct {
	format       document.Format
	availableErr error
	convertErr   error
	output       []byte

	sawDeadline bool
}

func (s *stubConverter) Format() document.Format { return s.format }
func (s *stubConverter) Available() error        { return s.availableErr }

func (s *stubConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	_, s.sawDeadline = ctx.Deadline()
	if s.convertErr != nil {
		return s.convertErr
	}
	return os.WriteFile(outputPath, s.output, 0o600)
}

func newTestService(t *testing.T, convs ...Converter) (*Service, *history.Log, *scratch.Store) {
	t.Helper()

	store, err := scratch.NewStore(scratch.Config{
		Dir:       filepath.Join(t.TempDir(), "scratch"),
		Retention: time.Minute,
	}, observability.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	hist := history.NewLog(10)
	svc := NewService(Config{MaxUploadBytes: 1 << 20, Timeout: time.Minute},
		NewRegistry(convs...), store, hist, observability.Nop())
	return svc, hist, store
}

func scratchEntryCount(t *testing.T, store *scratch.Store) int {
	t.Helper()

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	return len(entries)
}

func TestServiceConvertSuccess(t *testing.T) {
	pdfBytes := fixturePDFBytes(t)
	stub := &stubConverter{format: document.FormatTXT, output: pdfBytes}
	svc, hist, store := newTestService(t, stub)

	res, err := svc.Convert(context.Background(), "notes.txt", []byte("hello world"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, res.ID)
	assert.Equal(t, "notes.pdf", res.OutputName)
	assert.Equal(t, pdfBytes, res.PDF)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, document.FormatTXT, res.Format)
	assert.Equal(t, int64(len("hello world")), res.InputSize)
	assert.Equal(t, int64(len(pdfBytes)), res.OutputSize)
	assert.True(t, stub.sawDeadline, "conversions run under the configured timeout")

	require.Equal(t, 1, hist.Len())
	rec := hist.Recent()[0]
	assert.True(t, rec.Success)
	assert.Equal(t, "notes.txt", rec.InputName)
	assert.Equal(t, "notes.pdf", rec.OutputName)
	assert.Equal(t, 1, rec.Pages)

	assert.Zero(t, scratchEntryCount(t, store), "scratch workspace is released after conversion")
}

func TestServiceConvertValidationFailure(t *testing.T) {
	svc, hist, _ := newTestService(t, &stubConverter{format: document.FormatTXT})

	_, err := svc.Convert(context.Background(), "notes.txt", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))

	require.Equal(t, 1, hist.Len())
	rec := hist.Recent()[0]
	assert.False(t, rec.Success)
	assert.Equal(t, domain.ErrorTypeValidation, rec.ErrorType)
	assert.Equal(t, "notes.txt", rec.InputName)
}

func TestServiceConvertUnsupportedExtension(t *testing.T) {
	svc, hist, _ := newTestService(t, &stubConverter{format: document.FormatTXT})

	_, err := svc.Convert(context.Background(), "image.png", []byte("\x89PNG"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnsupported, domain.TypeOf(err))
	assert.Equal(t, domain.ErrorTypeUnsupported, hist.Recent()[0].ErrorType)
}

func TestServiceConvertNoConverterRegistered(t *testing.T) {
	// Valid format, but nothing registered to handle it.
	svc, _, _ := newTestService(t, &stubConverter{format: document.FormatTXT})

	_, err := svc.Convert(context.Background(), "readme.md", []byte("# hi"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnsupported, domain.TypeOf(err))
}

func TestServiceConvertDependencyFailure(t *testing.T) {
	stub := &stubConverter{
		format:       document.FormatDOCX,
		availableErr: domain.DependencyError("LibreOffice missing", nil, "install libreoffice"),
	}
	svc, hist, _ := newTestService(t, stub)

	_, err := svc.Convert(context.Background(), "report.docx", []byte("PK\x03\x04"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeDependency, domain.TypeOf(err))
	assert.NotEmpty(t, domain.HintsOf(err))
	assert.Equal(t, domain.ErrorTypeDependency, hist.Recent()[0].ErrorType)
}

func TestServiceConvertFailureReleasesScratch(t *testing.T) {
	stub := &stubConverter{
		format:     document.FormatTXT,
		convertErr: domain.ConversionError("renderer blew up", nil),
	}
	svc, hist, store := newTestService(t, stub)

	_, err := svc.Convert(context.Background(), "notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))

	rec := hist.Recent()[0]
	assert.False(t, rec.Success)
	assert.Contains(t, rec.Error, "renderer blew up")

	assert.Zero(t, scratchEntryCount(t, store), "scratch workspace is released after failures too")
}

func TestServiceConvertRejectsGarbageOutput(t *testing.T) {
	stub := &stubConverter{format: document.FormatTXT, output: []byte("not a pdf at all")}
	svc, hist, _ := newTestService(t, stub)

	_, err := svc.Convert(context.Background(), "notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
	assert.False(t, hist.Recent()[0].Success)
}

func TestServiceFormats(t *testing.T) {
	ready := &stubConverter{format: document.FormatTXT}
	broken := &stubConverter{
		format:       document.FormatDOCX,
		availableErr: domain.DependencyError("LibreOffice missing", nil),
	}
	svc, _, _ := newTestService(t, ready, broken)

	statuses := svc.Formats()
	require.Len(t, statuses, 2)

	// Canonical order puts docx first.
	assert.Equal(t, document.FormatDOCX, statuses[0].Info.Format)
	assert.False(t, statuses[0].Ready)
	assert.Contains(t, statuses[0].Detail, "LibreOffice")

	assert.Equal(t, document.FormatTXT, statuses[1].Info.Format)
	assert.True(t, statuses[1].Ready)
	assert.Empty(t, statuses[1].Detail)
}

func TestRegistryFor(t *testing.T) {
	reg := NewRegistry(&stubConverter{format: document.FormatTXT})

	c, err := reg.For(document.FormatTXT)
	require.NoError(t, err)
	assert.Equal(t, document.FormatTXT, c.Format())

	_, err = reg.For(document.FormatPPTX)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnsupported, domain.TypeOf(err))
}

func TestRegistryFormatsCanonicalOrder(t *testing.T) {
	reg := NewRegistry(
		&stubConverter{format: document.FormatMD},
		&stubConverter{format: document.FormatDOCX},
		&stubConverter{format: document.FormatPPTX},
		&stubConverter{format: document.FormatTXT},
	)

	assert.Equal(t, []document.Format{
		document.FormatDOCX,
		document.FormatPPTX,
		document.FormatTXT,
		document.FormatMD,
	}, reg.Formats())
}
