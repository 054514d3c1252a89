// Package office runs a headless LibreOffice process to convert
// documents to PDF.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) (output string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	return out.String(), err
}

// Runner locates the LibreOffice binary and drives conversions
// through it. Safe for concurrent use.
type Runner struct {
	binary string
	exec   executor
	logger *observability.Logger

	mu   sync.Mutex
	path string
}

// installHints tell the operator how to get a working LibreOffice.
var installHints = []string{
	"Install LibreOffice: apt-get install libreoffice (Debian/Ubuntu) or brew install --cask libreoffice (macOS)",
	"If LibreOffice lives at a custom location, set converters.office.binary or SOFFICE_PATH",
}

// NewRunner returns a Runner. binary overrides PATH lookup when set.
func NewRunner(binary string, logger *observability.Logger) *Runner {
	return &Runner{
		binary: binary,
		exec:   &osExecutor{},
		logger: logger.WithComponent("office"),
	}
}

// Available reports whether a LibreOffice binary can be found.
func (r *Runner) Available() error {
	_, err := r.resolve()
	return err
}

// ConvertToPDF converts inputPath into a PDF inside outDir and returns
// the produced file's path. LibreOffice names the output after the
// input stem, so callers control the result name via the input name.
func (r *Runner) ConvertToPDF(ctx context.Context, inputPath, outDir string) (string, error) {
	bin, err := r.resolve()
	if err != nil {
		return "", err
	}

	// A private profile keeps concurrent soffice invocations from
	// fighting over the shared user installation lock.
	profile := filepath.Join(outDir, ".soffice-profile")
	args := []string{
		"--headless",
		"--norestore",
		fmt.Sprintf("-env:UserInstallation=file://%s", profile),
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	}

	r.logger.Debug().
		Str("binary", bin).
		Str("input", filepath.Base(inputPath)).
		Msg("Invoking LibreOffice")

	output, runErr := r.exec.Run(ctx, bin, args...)
	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.ConversionError("document conversion timed out", ctx.Err())
		}
		return "", domain.ConversionError(
			fmt.Sprintf("LibreOffice failed: %s", tail(output, 400)),
			runErr,
		)
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, stem+".pdf")
	if _, statErr := os.Stat(produced); statErr != nil {
		return "", domain.ConversionError(
			fmt.Sprintf("LibreOffice produced no output: %s", tail(output, 400)),
			statErr,
		)
	}
	return produced, nil
}

// resolve finds the soffice binary, caching the result. A configured
// binary is used as-is; otherwise the usual names are tried on PATH.
func (r *Runner) resolve() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path != "" {
		return r.path, nil
	}

	candidates := []string{"soffice", "libreoffice"}
	if r.binary != "" {
		candidates = []string{r.binary}
	}

	for _, cand := range candidates {
		if p, err := r.exec.LookPath(cand); err == nil {
			r.path = p
			return p, nil
		}
	}

	return "", domain.DependencyError(
		"LibreOffice is required for this conversion but was not found",
		nil,
		installHints...,
	)
}

// tail returns the last n bytes of s with surrounding space trimmed,
// keeping error messages bounded.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
