// Package document defines the document model and the registry of
// supported input formats.
package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format identifies a supported input format by its file extension.
type Format string

const (
	FormatDOCX    Format = "docx"
	FormatPPTX    Format = "pptx"
	FormatTXT     Format = "txt"
	FormatMD      Format = "md"
	FormatUnknown Format = ""
)

// Document represents an uploaded document held in memory for conversion.
type Document struct {
	ID         uuid.UUID
	Name       string
	Format     Format
	Size       int64
	Data       []byte
	UploadedAt time.Time
}

// New creates a Document for an upload.
func New(name string, format Format, data []byte) *Document {
	return &Document{
		ID:         uuid.New(),
		Name:       name,
		Format:     format,
		Size:       int64(len(data)),
		Data:       data,
		UploadedAt: time.Now(),
	}
}

// Stem returns the document name without its extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Info describes a supported format for validation, the upload form,
// and the formats endpoint.
type Info struct {
	Format      Format
	DisplayName string
	MIMETypes   []string
	// ZipMagic is set for OOXML container formats, which must begin
	// with the "PK" zip signature.
	ZipMagic bool
	// Requirement names an external dependency the default converter
	// engine needs on the host, empty when self-contained.
	Requirement string
}

// Extension returns the dotted file extension for the format.
func (i Info) Extension() string {
	return "." + string(i.Format)
}

// MatchesMIME reports whether a detected content type is one the format
// accepts. Detected types carry parameters (e.g. "text/plain;
// charset=utf-8"), so matching is on the media type prefix.
func (i Info) MatchesMIME(mime string) bool {
	media := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	for _, m := range i.MIMETypes {
		if media == m {
			return true
		}
	}
	return false
}

var registry = []Info{
	{
		Format:      FormatDOCX,
		DisplayName: "Word Document",
		MIMETypes: []string{
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/zip",
		},
		ZipMagic:    true,
		Requirement: "LibreOffice",
	},
	{
		Format:      FormatPPTX,
		DisplayName: "PowerPoint Presentation",
		MIMETypes: []string{
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/zip",
		},
		ZipMagic: true,
	},
	{
		Format:      FormatTXT,
		DisplayName: "Text File",
		MIMETypes:   []string{"text/plain"},
	},
	{
		Format:      FormatMD,
		DisplayName: "Markdown File",
		MIMETypes:   []string{"text/markdown", "text/plain"},
	},
}

// Formats returns the supported formats in display order.
func Formats() []Info {
	out := make([]Info, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the registry entry for a format.
func Lookup(f Format) (Info, bool) {
	for _, info := range registry {
		if info.Format == f {
			return info, true
		}
	}
	return Info{}, false
}

// FormatFromPath derives the format from a file name's extension.
// The extension is the authoritative signal for dispatch.
func FormatFromPath(name string) Format {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, info := range registry {
		if string(info.Format) == ext {
			return info.Format
		}
	}
	return FormatUnknown
}

// FormatFromMIME maps a detected content type to the first format that
// accepts it. OOXML formats share the zip media type, so this is a
// hint, not a dispatch signal.
func FormatFromMIME(mime string) Format {
	for _, info := range registry {
		if info.MatchesMIME(mime) {
			return info.Format
		}
	}
	return FormatUnknown
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if value < 1024.0 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024.0
	}
	return fmt.Sprintf("%.2f TB", value)
}
