package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/katalon-recorder/pkg/config"
	"github.com/devicelab-dev/katalon-recorder/pkg/converter"
	"github.com/devicelab-dev/katalon-recorder/pkg/core"
	"github.com/devicelab-dev/katalon-recorder/pkg/logger"
	"github.com/devicelab-dev/katalon-recorder/pkg/output"
	"github.com/devicelab-dev/katalon-recorder/pkg/recording"
	"github.com/devicelab-dev/katalon-recorder/pkg/report"
)

// defaultOutputDir is used when neither a flag, env var nor config sets one.
const defaultOutputDir = "katalon"

var convertCommand = &cli.Command{
	Name:      "convert",
	Usage:     "Convert recordings to Katalon test scripts",
	ArgsUsage: "<recording-file-or-folder>...",
	Description: `Convert one or more Chrome DevTools Recorder JSON files into Katalon
Groovy scripts. Each recording <name>.json is written to <output>/<name>.groovy.

When no arguments are given, recordings listed in katalon-recorder.yaml are used.

Examples:
  katalon-recorder convert recording.json
  katalon-recorder convert recordings/ --output Scripts/Generated --parallel 4
  katalon-recorder convert recording.json --selector-attribute data-testid

  # Print scripts instead of writing them
  katalon-recorder convert recording.json --dry

  # Upload to an S3-compatible bucket
  katalon-recorder convert recordings/ --s3-endpoint localhost:9000 --s3-bucket scripts`,
	Flags: []cli.Flag{
		// Configuration
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to katalon-recorder.yaml (default: ./katalon-recorder.yaml if present)",
		},

		// Output
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory for generated scripts (default: ./" + defaultOutputDir + ")",
			EnvVars: []string{"KATALON_OUTPUT"},
		},
		&cli.BoolFlag{
			Name:    "dry",
			Aliases: []string{"d"},
			Usage:   "Print generated scripts to stdout instead of writing files",
		},
		&cli.BoolFlag{
			Name:  "no-report",
			Usage: "Don't write report.json to the output directory",
		},

		// Conversion
		&cli.IntFlag{
			Name:    "parallel",
			Usage:   "Convert up to N recordings concurrently (0 = sequential)",
			EnvVars: []string{"KATALON_PARALLEL"},
		},
		&cli.StringFlag{
			Name:    "selector-attribute",
			Usage:   "Prefer selectors containing this attribute (overrides the recording)",
			EnvVars: []string{"KATALON_SELECTOR_ATTRIBUTE"},
		},

		// Object storage
		&cli.StringFlag{
			Name:    "s3-endpoint",
			Usage:   "S3-compatible endpoint (host:port) to upload scripts to",
			EnvVars: []string{"KATALON_S3_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "s3-bucket",
			Usage:   "Bucket for uploaded scripts",
			EnvVars: []string{"KATALON_S3_BUCKET"},
		},
		&cli.StringFlag{
			Name:    "s3-prefix",
			Usage:   "Object key prefix for uploaded scripts",
			EnvVars: []string{"KATALON_S3_PREFIX"},
		},
		&cli.StringFlag{
			Name:    "s3-region",
			Usage:   "Bucket region",
			Value:   "us-east-1",
			EnvVars: []string{"KATALON_S3_REGION"},
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			Usage:   "Access key",
			EnvVars: []string{"KATALON_S3_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			Usage:   "Secret key",
			EnvVars: []string{"KATALON_S3_SECRET_KEY"},
		},
		&cli.BoolFlag{
			Name:    "s3-use-ssl",
			Usage:   "Use TLS for the object store connection",
			EnvVars: []string{"KATALON_S3_USE_SSL"},
		},
	},
	Action: runConvert,
}

// ConvertConfig holds the resolved settings for a convert run.
type ConvertConfig struct {
	Paths             []string
	OutputDir         string
	Dry               bool
	Report            bool
	Parallel          int
	SelectorAttribute string
	ObjectStore       *output.ObjectStoreConfig
	Verbose           bool
}

func runConvert(c *cli.Context) error {
	workspaceConfig, configDir, err := loadWorkspaceConfig(c.String("config"))
	if err != nil {
		return err
	}

	// Precedence: flag (or its env var) > workspace config > default
	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths, err = workspaceConfig.ResolveRecordings(configDir)
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("at least one recording file or folder is required")
	}

	cfg := &ConvertConfig{
		Paths:             paths,
		OutputDir:         firstNonEmpty(stringFlag(c, "output"), workspaceConfig.Output, defaultOutputDir),
		Dry:               c.Bool("dry") || workspaceConfig.Dry,
		Report:            !c.Bool("no-report"),
		Parallel:          workspaceConfig.Parallel,
		SelectorAttribute: firstNonEmpty(stringFlag(c, "selector-attribute"), workspaceConfig.SelectorAttribute),
		Verbose:           getBool(c, "verbose"),
	}
	if c.IsSet("parallel") {
		cfg.Parallel = c.Int("parallel")
	}
	if cfg.Parallel < 0 {
		return fmt.Errorf("--parallel must not be negative")
	}

	store := workspaceConfig.ObjectStore
	endpoint := firstNonEmpty(stringFlag(c, "s3-endpoint"), store.Endpoint)
	if endpoint == "" && stringFlag(c, "s3-bucket") != "" {
		return fmt.Errorf("--s3-endpoint is required when --s3-bucket is set")
	}
	if endpoint != "" && !cfg.Dry {
		useSSL := store.UseSSL
		if c.IsSet("s3-use-ssl") {
			useSSL = c.Bool("s3-use-ssl")
		}
		cfg.ObjectStore = &output.ObjectStoreConfig{
			Endpoint:  endpoint,
			Bucket:    firstNonEmpty(stringFlag(c, "s3-bucket"), store.Bucket),
			Prefix:    firstNonEmpty(stringFlag(c, "s3-prefix"), store.Prefix),
			Region:    firstNonEmpty(stringFlag(c, "s3-region"), store.Region, c.String("s3-region")),
			AccessKey: c.String("s3-access-key"),
			SecretKey: c.String("s3-secret-key"),
			UseSSL:    useSSL,
		}
	}

	return executeConvert(cfg)
}

// loadWorkspaceConfig loads an explicit config file, or katalon-recorder.yaml
// from the working directory when present. It returns the directory that
// relative recording paths in the config resolve against.
func loadWorkspaceConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, filepath.Dir(path), nil
	}
	cfg, err := config.LoadFromDir(".")
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, ".", nil
}

func executeConvert(cfg *ConvertConfig) error {
	files, err := recording.CollectFiles(cfg.Paths...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no recordings found in %v", cfg.Paths)
	}

	logger.SetVerbose(cfg.Verbose)

	// 1. Create output directory and initialize logging (not for dry runs)
	if !cfg.Dry {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		logPath := filepath.Join(cfg.OutputDir, AppName+".log")
		if err := logger.Init(logPath); err != nil {
			fmt.Printf("Warning: Failed to initialize logger: %v\n", err)
		}
		defer logger.Close()
	}

	logger.Info("=== Conversion started ===")
	logger.Info("Recordings: %d", len(files))
	logger.Info("Output directory: %s", cfg.OutputDir)

	// 2. Pick the destination for generated scripts
	writer, err := newWriter(cfg)
	if err != nil {
		return err
	}

	// 3. Convert, stopping cleanly on Ctrl-C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := &progressPrinter{dry: cfg.Dry}
	conv := converter.New(writer, converter.Config{
		SelectorAttribute: cfg.SelectorAttribute,
		Parallelism:       cfg.Parallel,
		OnFileStart:       progress.onFileStart,
		OnFileEnd:         progress.onFileEnd,
	})
	result := conv.Run(ctx, files)

	// 4. Summary report
	if cfg.Report && !cfg.Dry {
		r := report.Build(result, report.Meta{
			ToolName:    AppName,
			ToolVersion: Version,
			Options: report.Options{
				Output:            cfg.OutputDir,
				Dry:               cfg.Dry,
				Parallelism:       cfg.Parallel,
				SelectorAttribute: cfg.SelectorAttribute,
			},
		})
		if err := report.Write(cfg.OutputDir, r); err != nil {
			fmt.Printf("  %s⚠%s Warning: failed to write report: %v\n", color(colorYellow), color(colorReset), err)
		} else {
			logger.Info("Report written: %s", filepath.Join(cfg.OutputDir, report.FileName))
		}
	}

	if !cfg.Dry {
		printSummary(result)
	}
	logger.Info("=== Conversion finished: %s ===", result.Status)

	if result.FailedFiles > 0 {
		return fmt.Errorf("%d of %d recordings failed", result.FailedFiles, result.TotalFiles)
	}
	return nil
}

func newWriter(cfg *ConvertConfig) (output.Writer, error) {
	switch {
	case cfg.Dry:
		return output.NewStdoutWriter(os.Stdout), nil
	case cfg.ObjectStore != nil:
		return output.NewMinIOWriter(*cfg.ObjectStore)
	default:
		return output.NewDirWriter(cfg.OutputDir), nil
	}
}

// progressPrinter prints live progress. Callbacks may arrive from several
// workers, so each message is printed under a lock. In dry runs stdout
// carries the scripts, so only problems are reported, on stderr.
type progressPrinter struct {
	mu  sync.Mutex
	dry bool
}

func (p *progressPrinter) out() io.Writer {
	if p.dry {
		return os.Stderr
	}
	return os.Stdout
}

func (p *progressPrinter) onFileStart(fileIdx, totalFiles int, path string) {
	if p.dry {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out(), "%s🦉 Running Katalon Recorder on %s%s %s[%d/%d]%s\n",
		color(colorGreen), path, color(colorReset),
		color(colorGray), fileIdx+1, totalFiles, color(colorReset))
}

func (p *progressPrinter) onFileEnd(fr converter.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := p.out()

	for _, d := range fr.Diagnostics.Strings() {
		fmt.Fprintf(w, "  %s⚠ Warning:%s %s: %s\n", color(colorYellow), color(colorReset), filepath.Base(fr.Path), d)
	}

	switch {
	case errors.Is(fr.Err, core.ErrEmptyRecording):
		fmt.Fprintf(w, "  %s%s: %s%s\n", color(colorRed), filepath.Base(fr.Path), core.ErrEmptyRecording.Message, color(colorReset))
	case errors.Is(fr.Err, core.ErrOutputFailed):
		// Duplicate test names fail before anything is written, so there is no location
		fmt.Fprintf(w, "  %s😭 Something went wrong exporting %s%s\n", color(colorRed),
			firstNonEmpty(fr.Location, output.FileName(fr.TestName)), color(colorReset))
		fmt.Fprintf(w, "    %s╰─%s %v\n", color(colorGray), color(colorReset), fr.Err)
	case fr.Err != nil:
		fmt.Fprintf(w, "  %s✗ %v%s\n", color(colorRed), fr.Err, color(colorReset))
	case !p.dry:
		fmt.Fprintf(w, "  %s✅ %s exported to %s%s %s(%s)%s\n",
			color(colorGreen), filepath.Base(fr.Path), fr.Location, color(colorReset),
			color(colorGray), formatDuration(fr.Duration), color(colorReset))
	}
}

func printSummary(result *converter.RunResult) {
	fmt.Printf("\n%sSummary%s\n", color(colorBold), color(colorReset))
	if n := result.ConvertedFiles + result.WarnedFiles; n > 0 {
		fmt.Printf("  %s%d converted%s (%s)\n", color(colorGreen), n, color(colorReset), formatDuration(result.Duration))
	}
	if result.WarnedFiles > 0 {
		fmt.Printf("  %s%d with skipped steps%s\n", color(colorYellow), result.WarnedFiles, color(colorReset))
	}
	if result.FailedFiles > 0 {
		fmt.Printf("  %s%d failed%s\n", color(colorRed), result.FailedFiles, color(colorReset))
	}
	if result.SkippedFiles > 0 {
		fmt.Printf("  %s%d skipped%s\n", color(colorCyan), result.SkippedFiles, color(colorReset))
	}
}

// stringFlag returns a flag value only when it was set on the command line
// or through its environment variable.
func stringFlag(c *cli.Context, name string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	return ""
}

// getBool reads a flag from the current or parent context. When run as a
// subcommand, global flags are in the parent context.
func getBool(c *cli.Context, name string) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	for _, ctx := range c.Lineage() {
		if ctx != nil && ctx.IsSet(name) {
			return ctx.Bool(name)
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
