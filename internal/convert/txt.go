package convert

import (
	"context"
	"os"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/validate"
)

// TextConverter renders plain text files with a monospace layout so
// column alignment in the source survives the conversion.
type TextConverter struct{}

// NewTextConverter returns the plain text converter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) Format() document.Format {
	return document.FormatTXT
}

// Available always succeeds; the text converter runs in process.
func (c *TextConverter) Available() error {
	return nil
}

func (c *TextConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return domain.ConversionError("conversion canceled", err)
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return domain.IOError("cannot read text input", err)
	}

	// Non UTF-8 text is read as Latin-1 rather than rejected.
	text, _ := validate.DecodeText(raw)

	doc := newLayout(titleFor(inputPath))
	doc.AddPage()
	doc.SetFont("Courier", "", 11)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for i, block := range splitBlocks(text) {
		if i > 0 {
			doc.Ln(lineHeightMM)
		}
		doc.MultiCell(0, lineHeightMM, tr(block), "", "", false)
	}

	return writePDF(doc, outputPath)
}
