// Package validate implements upload validation and filename hygiene.
package validate

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
)

// zipMagic is the signature every OOXML container starts with.
var zipMagic = []byte("PK")

// Upload checks an uploaded file against size, extension, and content
// rules, in that order, and returns its format. The first failing check
// is returned as a validation DomainError.
func Upload(name string, data []byte, maxBytes int64) (document.Format, error) {
	if len(data) == 0 {
		return document.FormatUnknown, domain.ValidationError("file is empty", nil)
	}

	if size := int64(len(data)); size > maxBytes {
		return document.FormatUnknown, domain.ValidationError(
			fmt.Sprintf("file too large: %s exceeds the %s limit",
				document.FormatSize(size), document.FormatSize(maxBytes)), nil)
	}

	format := document.FormatFromPath(name)
	info, ok := document.Lookup(format)
	if !ok {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			ext = "(none)"
		}
		return document.FormatUnknown, domain.UnsupportedError(
			fmt.Sprintf("unsupported file extension %s; allowed: %s", ext, allowedList()), nil)
	}

	if info.ZipMagic && !bytes.HasPrefix(data, zipMagic) {
		return document.FormatUnknown, domain.ValidationError(
			fmt.Sprintf("file does not look like a valid %s", info.DisplayName), nil)
	}

	// Markdown must be real UTF-8 text. Plain text is never rejected for
	// encoding; the converter falls back to Latin-1.
	if format == document.FormatMD && !utf8.Valid(data) {
		return document.FormatUnknown, domain.ValidationError(
			"markdown file is not valid UTF-8 text", nil)
	}

	return format, nil
}

// DetectMIME sniffs the content type of the payload's first 512 bytes.
// Used for logging and cross-checks, never as the dispatch signal.
func DetectMIME(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

// SanitizeFilename keeps letters, digits, spaces, dashes, underscores,
// and dots, drops everything else, and trims trailing whitespace.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			r == ' ' || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// DownloadName builds the attachment filename for a converted document:
// the sanitized original stem plus ".pdf". A stem that sanitizes away
// entirely falls back to "document".
func DownloadName(originalName string) string {
	base := filepath.Base(originalName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimRight(SanitizeFilename(stem), " .")
	if stem == "" {
		stem = "document"
	}
	return stem + ".pdf"
}

// DecodeText decodes payload bytes as UTF-8, falling back to Latin-1 when
// the payload is not valid UTF-8. The second return reports whether the
// fallback was used.
func DecodeText(data []byte) (string, bool) {
	if utf8.Valid(data) {
		return string(data), false
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), true
}

func allowedList() string {
	formats := document.Formats()
	exts := make([]string, len(formats))
	for i, info := range formats {
		exts[i] = info.Extension()
	}
	return strings.Join(exts, ", ")
}
