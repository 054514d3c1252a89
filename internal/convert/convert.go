// Package convert dispatches uploaded documents to format specific
// converters and owns the conversion lifecycle: validate, stage in
// scratch, convert, verify, record, clean up.
package convert

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/pdf"
	"github.com/docforge/docforge/internal/scratch"
	"github.com/docforge/docforge/internal/validate"
)

// Converter turns one input format into PDF.
type Converter interface {
	// Format reports which input format this converter handles.
	Format() document.Format

	// Available reports whether the converter's dependencies are
	// usable right now. A nil error means conversions can proceed.
	Available() error

	// Convert reads inputPath and writes a PDF to outputPath.
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// OfficeRunner is the slice of the LibreOffice runner the converters
// depend on.
type OfficeRunner interface {
	Available() error
	ConvertToPDF(ctx context.Context, inputPath, outDir string) (string, error)
}

// Registry maps input formats to their converters.
type Registry struct {
	converters map[document.Format]Converter
}

// NewRegistry builds a registry from the given converters. A later
// converter for the same format replaces an earlier one.
func NewRegistry(convs ...Converter) *Registry {
	r := &Registry{converters: make(map[document.Format]Converter, len(convs))}
	for _, c := range convs {
		r.converters[c.Format()] = c
	}
	return r
}

// For returns the converter registered for format.
func (r *Registry) For(format document.Format) (Converter, error) {
	c, ok := r.converters[format]
	if !ok {
		return nil, domain.UnsupportedError(
			"no converter registered for format "+string(format), nil)
	}
	return c, nil
}

// Formats lists the registered formats in the registry's canonical
// order.
func (r *Registry) Formats() []document.Format {
	out := make([]document.Format, 0, len(r.converters))
	for _, info := range document.Formats() {
		if _, ok := r.converters[info.Format]; ok {
			out = append(out, info.Format)
		}
	}
	return out
}

// Result is a finished conversion.
type Result struct {
	ID         uuid.UUID
	OutputName string
	PDF        []byte
	Pages      int
	Format     document.Format
	InputSize  int64
	OutputSize int64
	Duration   time.Duration
}

// FormatStatus describes a supported format and whether its converter
// can run right now.
type FormatStatus struct {
	Info   document.Info
	Ready  bool
	Detail string
}

// Config holds the service level conversion settings.
type Config struct {
	// MaxUploadBytes caps the accepted document size.
	MaxUploadBytes int64
	// Timeout bounds a single conversion; zero means no limit.
	Timeout time.Duration
}

// Service coordinates a conversion from uploaded bytes to verified
// PDF output.
type Service struct {
	cfg      Config
	registry *Registry
	store    *scratch.Store
	history  *history.Log
	logger   *observability.Logger
}

// NewService wires the conversion service together.
func NewService(cfg Config, reg *Registry, store *scratch.Store, hist *history.Log, logger *observability.Logger) *Service {
	return &Service{
		cfg:      cfg,
		registry: reg,
		store:    store,
		history:  hist,
		logger:   logger.WithComponent("convert"),
	}
}

// Convert validates the upload, runs the matching converter inside the
// configured timeout and returns the verified PDF. Every attempt,
// failed or not, lands in the history log, and the scratch workspace
// is released before returning.
func (s *Service) Convert(ctx context.Context, filename string, data []byte) (res *Result, err error) {
	start := time.Now()
	rec := history.Record{InputName: filename, InputSize: int64(len(data))}
	defer func() {
		rec.Duration = time.Since(start)
		if err != nil {
			rec.Error = err.Error()
			rec.ErrorType = domain.TypeOf(err)
		} else {
			rec.Success = true
		}
		s.history.Add(rec)
	}()

	format, err := validate.Upload(filename, data, s.cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	rec.Format = format

	doc := document.New(filename, format, data)
	rec.ID = doc.ID
	logger := s.logger.With().
		Str("conversion_id", doc.ID.String()).
		Str("format", string(format)).
		Logger()

	mime := validate.DetectMIME(data)
	if info, ok := document.Lookup(format); ok && !info.MatchesMIME(mime) {
		logger.Debug().Str("mime", mime).Msg("Content type sniff disagrees with the extension")
	}

	conv, err := s.registry.For(format)
	if err != nil {
		return nil, err
	}
	if err = conv.Available(); err != nil {
		return nil, err
	}

	entry, err := s.store.Save(doc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := entry.Release(); relErr != nil {
			logger.Warn().Err(relErr).Msg("Cannot release scratch workspace")
		}
	}()

	cctx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	logger.Info().
		Str("input", filename).
		Int64("bytes", doc.Size).
		Msg("Starting conversion")

	if err = conv.Convert(cctx, entry.InputPath, entry.OutputPath); err != nil {
		return nil, err
	}

	out, readErr := os.ReadFile(entry.OutputPath)
	if readErr != nil {
		err = domain.IOError("cannot read conversion output", readErr)
		return nil, err
	}

	pages, err := pdf.Verify(out)
	if err != nil {
		return nil, err
	}

	res = &Result{
		ID:         doc.ID,
		OutputName: validate.DownloadName(filename),
		PDF:        out,
		Pages:      pages,
		Format:     format,
		InputSize:  doc.Size,
		OutputSize: int64(len(out)),
		Duration:   time.Since(start),
	}

	rec.OutputName = res.OutputName
	rec.OutputSize = res.OutputSize
	rec.Pages = pages

	logger.Info().
		Str("output", res.OutputName).
		Int("pages", pages).
		Int64("bytes", res.OutputSize).
		Dur("took", res.Duration).
		Msg("Conversion complete")

	return res, nil
}

// Formats reports each registered format with the current health of
// its converter.
func (s *Service) Formats() []FormatStatus {
	formats := s.registry.Formats()
	out := make([]FormatStatus, 0, len(formats))
	for _, f := range formats {
		info, ok := document.Lookup(f)
		if !ok {
			continue
		}
		st := FormatStatus{Info: info, Ready: true}
		conv, err := s.registry.For(f)
		if err == nil {
			err = conv.Available()
		}
		if err != nil {
			st.Ready = false
			st.Detail = err.Error()
		}
		out = append(out, st)
	}
	return out
}

// History exposes the conversion log.
func (s *Service) History() *history.Log {
	return s.history
}
