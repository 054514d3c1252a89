// Package pdf inspects converter output before it is handed back to
// callers.
package pdf

import (
	"bytes"

	"github.com/gen2brain/go-fitz"

	"github.com/docforge/docforge/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// Verify checks that data is a readable PDF document and returns its
// page count. Converters are trusted to write PDFs; this catches the
// cases where an external tool exits zero but emits garbage.
func Verify(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, domain.ConversionError("conversion produced an empty file", nil)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, domain.ConversionError("conversion output is not a PDF", nil)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, domain.ConversionError("conversion output cannot be opened as a PDF", err)
	}
	defer doc.Close()

	pages := doc.NumPage()
	if pages < 1 {
		return 0, domain.ConversionError("conversion output has no pages", nil)
	}
	return pages, nil
}
