// Package main provides the docforge CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/convert"
	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/domain"
	"github.com/docforge/docforge/internal/history"
	"github.com/docforge/docforge/internal/observability"
	"github.com/docforge/docforge/internal/office"
	"github.com/docforge/docforge/internal/scratch"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "docforge-cli",
	Short: "Convert Office documents, Markdown, and plain text to PDF",
	Long: `docforge-cli converts documents to PDF from the command line, using the
same conversion pipeline as the docforge API server.

Use this tool to:
- Convert a single document or a whole directory of documents
- Check which converters are ready on this host
- Script conversions with --json output

DOCX conversion (and the office Markdown engine) shells out to
LibreOffice; install it or point converters.office.binary at the
soffice executable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logLevel := cfg.Observability.LogLevel
		if verbose {
			logLevel = "debug"
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       logLevel,
			Format:      logFormat,
			Output:      os.Stderr,
			ServiceName: "docforge-cli",
		})

		if noColor {
			color.NoColor = true
		}

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newFormatsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildService wires the same conversion stack the API server runs.
// The scratch sweeper is skipped: a one-shot process releases every
// scratch entry before it exits.
func buildService() (*convert.Service, *scratch.Store, error) {
	store, err := scratch.NewStore(scratch.Config{
		Dir:       cfg.Scratch.Dir,
		Retention: cfg.Scratch.Retention,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init scratch store: %w", err)
	}

	runner := office.NewRunner(cfg.Converters.Office.Binary, logger)
	registry := convert.NewRegistry(
		convert.NewDocxConverter(cfg.Converters.Docx.Engine, runner),
		convert.NewPptxConverter(),
		convert.NewTextConverter(),
		convert.NewMarkdownConverter(cfg.Converters.MD.Engine, runner),
	)

	service := convert.NewService(convert.Config{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		Timeout:        cfg.Limits.ConvertTimeout,
	}, registry, store, history.NewLog(cfg.History.MaxEntries), logger)

	return service, store, nil
}

// conversionReport is the per-document outcome of a convert run.
type conversionReport struct {
	Input       string   `json:"input"`
	Output      string   `json:"output,omitempty"`
	Format      string   `json:"format,omitempty"`
	Pages       int      `json:"pages,omitempty"`
	OutputBytes int64    `json:"output_bytes,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Error       string   `json:"error,omitempty"`
	Code        string   `json:"code,omitempty"`
	Hints       []string `json:"hints,omitempty"`
}

// newConvertCmd creates the convert subcommand.
func newConvertCmd() *cobra.Command {
	var (
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "convert <path>...",
		Short: "Convert documents to PDF",
		Long: `Convert turns DOCX, PPTX, Markdown, and plain text documents into PDF.

Each argument is a file or a directory; directories are scanned one
level deep for supported extensions. The PDF lands next to its input
unless --output names a target file or directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			if timeout > 0 {
				cfg.Limits.ConvertTimeout = timeout
			}

			jobs, err := collectInputs(args)
			if err != nil {
				return err
			}

			service, store, err := buildService()
			if err != nil {
				return err
			}
			defer store.Close()

			// --output is a file path only for a single input ending
			// in .pdf; everything else treats it as a directory.
			outFile := ""
			outDir := ""
			if output != "" {
				if len(jobs) == 1 && strings.EqualFold(filepath.Ext(output), ".pdf") {
					outFile = output
				} else {
					outDir = output
					if err := os.MkdirAll(outDir, 0o755); err != nil {
						return fmt.Errorf("create output directory: %w", err)
					}
				}
			}

			run := func(path string) conversionReport {
				rep := conversionReport{Input: path}

				data, err := os.ReadFile(path)
				if err != nil {
					rep.Error = fmt.Sprintf("read input: %v", err)
					rep.Code = string(domain.ErrorTypeIO)
					return rep
				}

				res, err := service.Convert(ctx, filepath.Base(path), data)
				if err != nil {
					rep.Error = err.Error()
					rep.Code = string(domain.TypeOf(err))
					rep.Hints = domain.HintsOf(err)
					return rep
				}

				dest := outFile
				if dest == "" {
					dir := outDir
					if dir == "" {
						dir = filepath.Dir(path)
					}
					dest = filepath.Join(dir, res.OutputName)
				}
				if err := os.WriteFile(dest, res.PDF, 0o644); err != nil {
					rep.Error = fmt.Sprintf("write output: %v", err)
					rep.Code = string(domain.ErrorTypeIO)
					return rep
				}

				rep.Output = dest
				rep.Format = string(res.Format)
				rep.Pages = res.Pages
				rep.OutputBytes = res.OutputSize
				rep.Duration = FormatDuration(res.Duration)
				return rep
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			reports := make([]conversionReport, 0, len(jobs))
			if len(jobs) == 1 {
				sp := ui.Spinner("Converting " + filepath.Base(jobs[0]))
				sp.Start()
				reports = append(reports, run(jobs[0]))
				sp.Stop()
			} else {
				bar := ui.ProgressBar("convert", int64(len(jobs)))
				for _, job := range jobs {
					reports = append(reports, run(job))
					if bar != nil {
						bar.Increment()
					}
				}
				ui.Close()
			}

			failed := 0
			for _, rep := range reports {
				if rep.Error != "" {
					failed++
				}
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				var encErr error
				if len(reports) == 1 {
					encErr = enc.Encode(reports[0])
				} else {
					encErr = enc.Encode(reports)
				}
				if encErr != nil {
					return encErr
				}
			} else {
				for _, rep := range reports {
					if rep.Error == "" {
						continue
					}
					ui.Error("%s: %s", rep.Input, rep.Error)
					for _, hint := range rep.Hints {
						fmt.Fprintf(os.Stderr, "    %s\n", hint)
					}
				}
				if len(reports) == 1 && failed == 0 {
					rep := reports[0]
					ui.Success("Converted %s", rep.Input)
					ui.KeyValue("Output", rep.Output)
					ui.KeyValue("Pages", rep.Pages)
					ui.KeyValue("Size", document.FormatSize(rep.OutputBytes))
					ui.KeyValue("Duration", rep.Duration)
				} else if len(reports) > 1 {
					ui.Success("Converted %d of %d documents", len(reports)-failed, len(reports))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PDF file or directory (default: next to each input)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-document conversion timeout (default from config)")

	return cmd
}

// collectInputs expands the command arguments into individual files.
// Directory arguments are scanned one level deep for supported
// extensions; unsupported extensions given directly are kept so the
// conversion reports a proper error for them.
func collectInputs(args []string) ([]string, error) {
	var jobs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			jobs = append(jobs, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if document.FormatFromPath(entry.Name()) == document.FormatUnknown {
				continue
			}
			jobs = append(jobs, filepath.Join(arg, entry.Name()))
		}
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("no convertible documents found")
	}
	return jobs, nil
}

// newFormatsCmd creates the formats subcommand.
func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported input formats and converter status",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, store, err := buildService()
			if err != nil {
				return err
			}
			defer store.Close()

			statuses := service.Formats()

			if outputJSON {
				out := make([]map[string]interface{}, 0, len(statuses))
				for _, st := range statuses {
					entry := map[string]interface{}{
						"extension": st.Info.Extension(),
						"name":      st.Info.DisplayName,
						"ready":     st.Ready,
					}
					if st.Info.Requirement != "" {
						entry["requirement"] = st.Info.Requirement
					}
					if st.Detail != "" {
						entry["detail"] = st.Detail
					}
					out = append(out, entry)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			rows := make([][]string, 0, len(statuses))
			for _, st := range statuses {
				state := "ready"
				note := st.Info.Requirement
				if !st.Ready {
					state = "unavailable"
					if st.Detail != "" {
						note = st.Detail
					}
				}
				rows = append(rows, []string{st.Info.Extension(), st.Info.DisplayName, state, note})
			}
			ui.Table([]string{"EXT", "FORMAT", "STATUS", "NOTES"}, rows)
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.Encode(map[string]string{
					"version": "0.1.0",
					"go":      "1.25",
				})
				return
			}
			fmt.Println("docforge-cli v0.1.0")
		},
	}
}
