package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mandolyte/mdtopdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// markdownStyle is the stylesheet applied by the office engine's HTML
// intermediate, approximating the GitHub rendering of the source.
const markdownStyle = `
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.5; margin: 2cm; color: #24292f; }
h1, h2, h3, h4 { font-weight: 600; margin-top: 1.2em; margin-bottom: 0.5em; }
h1 { font-size: 20pt; border-bottom: 1px solid #d0d7de; padding-bottom: 0.2em; }
h2 { font-size: 16pt; border-bottom: 1px solid #d0d7de; padding-bottom: 0.2em; }
h3 { font-size: 13pt; }
code { font-family: Courier, monospace; font-size: 10pt; background-color: #f6f8fa; padding: 1px 4px; }
pre { background-color: #f6f8fa; padding: 10px; overflow-x: auto; }
pre code { background-color: transparent; padding: 0; }
blockquote { border-left: 4px solid #d0d7de; margin-left: 0; padding-left: 1em; color: #57606a; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d0d7de; padding: 4px 10px; }
th { background-color: #f6f8fa; }
a { color: #0969da; }
`

// MarkdownConverter converts Markdown files. The direct engine
// renders straight to PDF in process; the office engine renders to
// styled HTML first and lets LibreOffice do the PDF layout, which
// handles tables and embedded HTML better.
type MarkdownConverter struct {
	engine string
	office OfficeRunner
}

// NewMarkdownConverter returns a Markdown converter using the given
// engine.
func NewMarkdownConverter(engine string, runner OfficeRunner) *MarkdownConverter {
	if engine == "" {
		engine = config.MDEngineDirect
	}
	return &MarkdownConverter{engine: engine, office: runner}
}

func (c *MarkdownConverter) Format() document.Format {
	return document.FormatMD
}

func (c *MarkdownConverter) Available() error {
	if c.engine == config.MDEngineOffice {
		return c.office.Available()
	}
	return nil
}

func (c *MarkdownConverter) Convert(ctx context.Context, inputPath, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return domain.ConversionError("conversion canceled", err)
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return domain.IOError("cannot read markdown input", err)
	}

	if c.engine == config.MDEngineOffice {
		return c.convertViaOffice(ctx, content, inputPath, outputPath)
	}
	return c.convertDirect(content, inputPath, outputPath)
}

func (c *MarkdownConverter) convertDirect(content []byte, inputPath, outputPath string) error {
	renderer := mdtopdf.NewPdfRenderer("P", "A4", outputPath, "", nil, mdtopdf.LIGHT)
	renderer.Pdf.SetTitle(titleFor(inputPath), true)

	if err := renderer.Process(content); err != nil {
		return domain.ConversionError("cannot render markdown", err)
	}
	return nil
}

func (c *MarkdownConverter) convertViaOffice(ctx context.Context, content []byte, inputPath, outputPath string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert(content, &body); err != nil {
		return domain.ConversionError("cannot render markdown to HTML", err)
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>%s</style>
</head>
<body>
%s
</body>
</html>
`, titleFor(inputPath), markdownStyle, body.String())

	// The HTML shares the input's stem so LibreOffice names its
	// output exactly outputPath.
	htmlPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".html"
	if err := os.WriteFile(htmlPath, []byte(page), 0o600); err != nil {
		return domain.IOError("cannot write HTML intermediate", err)
	}

	produced, err := c.office.ConvertToPDF(ctx, htmlPath, filepath.Dir(outputPath))
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
