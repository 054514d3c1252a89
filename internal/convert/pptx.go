package convert

import (
	"context"
	"fmt"

	"code.sajari.com/docconv/v2"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// PptxConverter extracts the text of a slide deck and lays it out as
// one PDF page per slide. Slide visuals are out of scope; the goal is
// a readable text rendition of the deck.
type PptxConverter struct {
	extract func(path string) (string, error)
}

// NewPptxConverter returns the presentation converter.
func NewPptxConverter() *PptxConverter {
	return &PptxConverter{extract: extractDeckText}
}

// extractDeckText pulls the plain text out of a slide deck. Slides
// come back separated by blank lines.
func extractDeckText(path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

func (c *PptxConverter) Format() document.Format {
	return document.FormatPPTX
}

// Available always succeeds; the presentation converter runs in
// process.
func (c *PptxConverter) Available() error {
	return nil
}

func (c *PptxConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return domain.ConversionError("conversion canceled", err)
	}

	text, err := c.extract(inputPath)
	if err != nil {
		return domain.ConversionError("cannot read presentation content", err)
	}

	doc := newLayout(titleFor(inputPath))
	tr := doc.UnicodeTranslatorFromDescriptor("")

	blocks := splitBlocks(text)
	if len(blocks) == 0 {
		blocks = []string{"(No text content)"}
	}

	for i, block := range blocks {
		doc.AddPage()
		doc.SetFont("Helvetica", "B", 16)
		doc.CellFormat(0, 10, tr(fmt.Sprintf("Slide %d", i+1)), "", 1, "L", false, 0, "")
		doc.Ln(2)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, lineHeightMM, tr(block), "", "", false)
	}

	return writePDF(doc, outputPath)
}
