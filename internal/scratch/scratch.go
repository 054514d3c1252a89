// Package scratch manages the scratch directory where uploads and
// converter output live for the duration of a conversion.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/validate"
)

// Config holds scratch store settings.
type Config struct {
	// Dir is the scratch root; empty means <os.TempDir()>/docforge.
	Dir string
	// Retention is how old an entry must be before the sweeper removes
	// it. Covers crashed conversions and the download window.
	Retention time.Duration
	// SweepInterval is how often the sweeper runs; zero disables it.
	SweepInterval time.Duration
}

// Store owns the scratch root and its background sweeper.
type Store struct {
	root      string
	retention time.Duration
	logger    *observability.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Entry is the on-disk workspace of a single conversion.
type Entry struct {
	Dir        string
	InputPath  string
	OutputPath string
}

// NewStore creates the scratch root and starts the sweeper.
func NewStore(cfg Config, logger *observability.Logger) (*Store, error) {
	root := cfg.Dir
	if root == "" {
		root = filepath.Join(os.TempDir(), "docforge")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, domain.IOError("cannot create scratch directory", err)
	}

	s := &Store{
		root:      root,
		retention: cfg.Retention,
		logger:    logger.WithComponent("scratch"),
		done:      make(chan struct{}),
	}

	if cfg.SweepInterval > 0 {
		go s.run(cfg.SweepInterval)
	}

	return s, nil
}

// Root returns the scratch root directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes the document into a fresh per-conversion directory and
// returns the workspace paths. The directory name is a short unique
// prefix from the document ID; the file keeps its sanitized name so
// external tools derive the right output name from the stem.
func (s *Store) Save(doc *document.Document) (*Entry, error) {
	dir := filepath.Join(s.root, doc.ID.String()[:8])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.IOError("cannot create conversion directory", err)
	}

	name := scratchName(doc)
	input := filepath.Join(dir, name)
	if err := os.WriteFile(input, doc.Data, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, domain.IOError("cannot write upload to scratch", err)
	}

	output := strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"

	s.logger.Debug().
		Str("dir", dir).
		Str("input", name).
		Int64("bytes", doc.Size).
		Msg("Saved upload to scratch")

	return &Entry{Dir: dir, InputPath: input, OutputPath: output}, nil
}

// Release removes the conversion directory. Best effort; conversions
// that slip through are picked up by the sweeper.
func (e *Entry) Release() error {
	if e.Dir == "" {
		return nil
	}
	return os.RemoveAll(e.Dir)
}

// Close stops the sweeper.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepOnce()
		case <-s.done:
			return
		}
	}
}

// sweepOnce removes scratch entries older than the retention window.
// Only direct children of the root are considered.
func (s *Store) sweepOnce() {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cannot read scratch root")
		return
	}

	cutoff := time.Now().Add(-s.retention)
	removed := 0

	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Cannot remove stale scratch entry")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Swept stale scratch entries")
	}
}

func scratchName(doc *document.Document) string {
	base := filepath.Base(doc.Name)
	ext := strings.ToLower(filepath.Ext(base))
	stem := validate.SanitizeFilename(strings.TrimSuffix(base, ext))
	stem = strings.TrimRight(stem, " .")
	if stem == "" {
		stem = "document"
	}
	if ext == "" {
		ext = fmt.Sprintf(".%s", doc.Format)
	}
	return stem + ext
}
