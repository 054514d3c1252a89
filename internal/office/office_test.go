package office

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/observability"
)

// fakeExecutor records invocations and simulates soffice behavior.
type fakeExecutor struct {
	availableBins map[string]bool // binary name -> LookPath success
	runErr        error
	runOutput     string
	writeOutput   bool // create the expected PDF like soffice would
	runDelay      time.Duration

	gotName string
	gotArgs []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.gotName = name
	f.gotArgs = args

	if f.runDelay > 0 {
		select {
		case <-time.After(f.runDelay):
		case <-ctx.Done():
			return f.runOutput, ctx.Err()
		}
	}
	if f.runErr != nil {
		return f.runOutput, f.runErr
	}
	if f.writeOutput {
		input := args[len(args)-1]
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		outDir := args[len(args)-2]
		if err := os.WriteFile(filepath.Join(outDir, stem+".pdf"), []byte("%PDF-1.4"), 0o600); err != nil {
			return "", err
		}
	}
	return f.runOutput, nil
}

func newTestRunner(binary string, exec *fakeExecutor) *Runner {
	r := NewRunner(binary, observability.Nop())
	r.exec = exec
	return r
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name    string
		binary  string
		exec    *fakeExecutor
		wantErr bool
	}{
		{
			name: "soffice on PATH",
			exec: &fakeExecutor{availableBins: map[string]bool{"soffice": true}},
		},
		{
			name: "libreoffice fallback",
			exec: &fakeExecutor{availableBins: map[string]bool{"libreoffice": true}},
		},
		{
			name:   "configured binary",
			binary: "/opt/libreoffice/soffice",
			exec:   &fakeExecutor{availableBins: map[string]bool{"/opt/libreoffice/soffice": true}},
		},
		{
			name:    "nothing installed",
			exec:    &fakeExecutor{availableBins: map[string]bool{}},
			wantErr: true,
		},
		{
			name:    "configured binary missing, no PATH fallback",
			binary:  "/opt/nope/soffice",
			exec:    &fakeExecutor{availableBins: map[string]bool{"soffice": true}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestRunner(tt.binary, tt.exec).Available()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, domain.ErrorTypeDependency, domain.TypeOf(err))
			assert.NotEmpty(t, domain.HintsOf(err), "dependency errors should carry install hints")
		})
	}
}

func TestConvertToPDF(t *testing.T) {
	exec := &fakeExecutor{
		availableBins: map[string]bool{"soffice": true},
		writeOutput:   true,
	}
	r := newTestRunner("", exec)

	outDir := t.TempDir()
	input := filepath.Join(outDir, "report.docx")
	require.NoError(t, os.WriteFile(input, []byte("PK"), 0o600))

	produced, err := r.ConvertToPDF(context.Background(), input, outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "report.pdf"), produced)

	assert.Equal(t, "/usr/bin/soffice", exec.gotName)
	assert.Contains(t, exec.gotArgs, "--headless")
	assert.Contains(t, exec.gotArgs, "--convert-to")
	assert.Contains(t, exec.gotArgs, "pdf")
	assert.Contains(t, exec.gotArgs, "--outdir")
	assert.Contains(t, exec.gotArgs, input)
}

func TestConvertToPDFCommandFailure(t *testing.T) {
	exec := &fakeExecutor{
		availableBins: map[string]bool{"soffice": true},
		runErr:        errors.New("exit status 77"),
		runOutput:     "Error: source file could not be loaded",
	}
	r := newTestRunner("", exec)

	_, err := r.ConvertToPDF(context.Background(), "/tmp/in.docx", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "could not be loaded")
}

func TestConvertToPDFNoOutput(t *testing.T) {
	exec := &fakeExecutor{
		availableBins: map[string]bool{"soffice": true},
		writeOutput:   false,
	}
	r := newTestRunner("", exec)

	_, err := r.ConvertToPDF(context.Background(), "/tmp/in.docx", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "produced no output")
}

func TestConvertToPDFTimeout(t *testing.T) {
	exec := &fakeExecutor{
		availableBins: map[string]bool{"soffice": true},
		runDelay:      time.Second,
	}
	r := newTestRunner("", exec)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.ConvertToPDF(ctx, "/tmp/in.docx", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConversion, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "timed out")
}

func TestResolveCachesLookup(t *testing.T) {
	exec := &fakeExecutor{availableBins: map[string]bool{"soffice": true}}
	r := newTestRunner("", exec)

	first, err := r.resolve()
	require.NoError(t, err)

	// Lookups stop hitting the executor once resolved.
	exec.availableBins = map[string]bool{}
	second, err := r.resolve()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
