package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// DocxConverter converts Word documents. The office engine delegates
// to LibreOffice for faithful layout; the embedded engine extracts the
// document text in process and lays it out itself, trading fidelity
// for zero external dependencies.
type DocxConverter struct {
	engine string
	office OfficeRunner
}

// NewDocxConverter returns a Word converter using the given engine.
func NewDocxConverter(engine string, runner OfficeRunner) *DocxConverter {
	if engine == "" {
		engine = config.DocxEngineOffice
	}
	return &DocxConverter{engine: engine, office: runner}
}

func (c *DocxConverter) Format() document.Format {
	return document.FormatDOCX
}

func (c *DocxConverter) Available() error {
	if c.engine == config.DocxEngineEmbedded {
		return nil
	}
	return c.office.Available()
}

func (c *DocxConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if c.engine == config.DocxEngineEmbedded {
		return c.convertEmbedded(ctx, inputPath, outputPath)
	}

	produced, err := c.office.ConvertToPDF(ctx, inputPath, filepath.Dir(outputPath))
	if err != nil {
		return err
	}
	if produced != outputPath {
		if err := os.Rename(produced, outputPath); err != nil {
			return domain.IOError("cannot move converted output", err)
		}
	}
	return nil
}

func (c *DocxConverter) convertEmbedded(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return domain.ConversionError("conversion canceled", err)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return domain.IOError("cannot read document input", err)
	}

	parsed, err := docx.Parse(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return domain.ConversionError("cannot parse Word document", err)
	}

	doc := newLayout(titleFor(inputPath))
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	wrote := false
	for _, item := range parsed.Document.Body.Items {
		var content string
		switch t := item.(type) {
		case *docx.Paragraph:
			content = t.String()
		case *docx.Table:
			content = t.String()
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		if wrote {
			doc.Ln(lineHeightMM)
		}
		doc.MultiCell(0, lineHeightMM, tr(content), "", "", false)
		wrote = true
	}

	return writePDF(doc, outputPath)
}
