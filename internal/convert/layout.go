package convert

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/docforge/docforge/internal/domain"
)

// Shared page geometry for the in-process gofpdf converters.
const (
	pageMarginMM = 20.0
	lineHeightMM = 5.0
)

// newLayout returns an A4 portrait document with common margins and
// metadata set.
func newLayout(title string) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	doc.SetAutoPageBreak(true, pageMarginMM)
	return doc
}

// writePDF finalizes the document onto disk.
func writePDF(doc *gofpdf.Fpdf, path string) error {
	if err := doc.OutputFileAndClose(path); err != nil {
		return domain.ConversionError("cannot write PDF output", err)
	}
	return nil
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// splitBlocks breaks text into paragraph blocks on blank lines and
// drops blocks that are pure whitespace.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, block := range blankLines.Split(text, -1) {
		block = strings.TrimRight(block, " \t\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		out = append(out, block)
	}
	return out
}

// titleFor derives PDF metadata from the input file name.
func titleFor(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
