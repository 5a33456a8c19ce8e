// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"risklens/internal/config"
	"risklens/internal/core"
	"risklens/internal/formatters"
	_ "risklens/internal/formatters/csv"
	_ "risklens/internal/formatters/json"
	_ "risklens/internal/formatters/text"
	_ "risklens/internal/formatters/yaml"
	"risklens/internal/help"
	"risklens/internal/observability"
	"risklens/internal/scoring"
	"risklens/internal/validators"
	"risklens/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitRisk  = 2
)

// configFlags holds command line flag values
type configFlags struct {
	file           string
	text           string
	configFile     string
	profile        string
	exposure       string
	confidence     float64
	minConfidence  float64
	checks         string
	workers        int
	format         string
	output         string
	recursive      bool
	noContext      bool
	validate       string
	describe       string
	listPatterns   bool
	listValidators bool
	listProfiles   bool
	listFormats    bool
	listRules      bool
	verbose        bool
	debug          bool
	noColor        bool
	showVersion    bool
	showHelp       bool
	failOnRisk     bool
}

// finalConfiguration holds resolved presentation settings
type finalConfiguration struct {
	format  string
	verbose bool
	noColor bool
	debug   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(flags *configFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("risklens", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&flags.file, "file", "", "Comma separated files or directories to scan")
	fs.StringVar(&flags.text, "text", "", "Text to scan; '-' reads standard input")
	fs.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&flags.profile, "profile", "", "Profile name to use from config file")
	fs.StringVar(&flags.exposure, "exposure", "", "Exposure level: PRIVATE, INTERNAL, ORG_WIDE, PUBLIC")
	fs.Float64Var(&flags.confidence, "confidence", 0, "Scoring confidence between 0 and 1")
	fs.Float64Var(&flags.minConfidence, "min-confidence", 0, "Drop findings below this confidence")
	fs.StringVar(&flags.checks, "checks", "", "Comma separated entity types to report (default: all)")
	fs.IntVar(&flags.workers, "workers", 0, "Worker count for batch stages")
	fs.StringVar(&flags.format, "format", "", "Output format: csv, json, text, yaml (default: text)")
	fs.StringVar(&flags.output, "output", "", "Path to output file (if not specified, output to stdout)")
	fs.BoolVar(&flags.recursive, "recursive", false, "Recursively scan directories")
	fs.BoolVar(&flags.noContext, "no-context", false, "Skip hotword and deny list review of candidates")
	fs.StringVar(&flags.validate, "validate", "", "Run the named checksum validator over the remaining arguments")
	fs.StringVar(&flags.describe, "describe", "", "Show how an entity type is detected and scored")
	fs.BoolVar(&flags.listPatterns, "list-patterns", false, "List the active pattern catalog")
	fs.BoolVar(&flags.listValidators, "list-validators", false, "List validators and checksums")
	fs.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles in config file")
	fs.BoolVar(&flags.listFormats, "list-formats", false, "List output formats")
	fs.BoolVar(&flags.listRules, "list-rules", false, "Show scoring weights, rules, exposures and tiers")
	fs.BoolVar(&flags.verbose, "verbose", false, "Display matched text and context for each finding")
	fs.BoolVar(&flags.debug, "debug", false, "Log pipeline steps and timings to stderr")
	fs.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")
	fs.BoolVar(&flags.showHelp, "help", false, "Show help information")
	fs.BoolVar(&flags.failOnRisk, "fail-on-risk", false, "Exit with status 2 when the highest tier is HIGH or CRITICAL")
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	var flags configFlags
	fs := newFlagSet(&flags, stderr)
	fs.Usage = func() { help.NewSystemTo(stderr, true).ShowGeneralHelp() }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitError
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	logger, err := observability.NewLogger(observability.LoggerConfig{Level: logLevel(flags.debug), Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := loadConfiguration(flags.configFile)
	if err != nil {
		if flags.configFile != "" {
			printError(stderr, "Error loading config file", err)
			return exitError
		}
		logger.Warn("error loading config file, using defaults", zap.Error(err))
	}

	if flags.profile != "" {
		if err := cfg.ApplyProfile(flags.profile); err != nil {
			printError(stderr, "Error applying profile", err)
			return exitError
		}
	}

	final := resolveConfiguration(cfg, fs, &flags)
	if final.noColor || !isTerminal(stdout) || flags.output != "" {
		color.NoColor = true
		final.noColor = true
	}
	helpSystem := help.NewSystemTo(stdout, final.noColor)

	switch {
	case flags.showHelp:
		helpSystem.ShowGeneralHelp()
		return exitOK
	case flags.listValidators:
		helpSystem.ShowValidators()
		return exitOK
	case flags.listPatterns:
		helpSystem.ShowPatterns(cfg.Catalog())
		return exitOK
	case flags.listProfiles:
		helpSystem.ShowProfiles(cfg)
		return exitOK
	case flags.listFormats:
		helpSystem.ShowFormats()
		return exitOK
	case flags.listRules:
		helpSystem.ShowScoring()
		return exitOK
	case flags.describe != "":
		if !helpSystem.ShowEntity(flags.describe, cfg.Catalog()) {
			return exitError
		}
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if flags.validate != "" {
		return runValidate(ctx, flags.validate, fs.Args(), final, stdout, stderr)
	}

	if flags.file == "" && flags.text == "" {
		fmt.Fprintln(stderr, "Error: --file or --text is required")
		helpSystem.ShowGeneralHelp()
		return exitError
	}
	if flags.file != "" && flags.text != "" {
		fmt.Fprintln(stderr, "Error: use either --file or --text, not both")
		return exitError
	}

	for _, bounded := range []struct {
		name  string
		value float64
	}{{"--confidence", flags.confidence}, {"--min-confidence", flags.minConfidence}} {
		if bounded.value < 0 || bounded.value > 1 {
			fmt.Fprintf(stderr, "Error: %s must be between 0 and 1, got %v\n", bounded.name, bounded.value)
			return exitError
		}
	}

	observer := newObserver(final.debug, logger, stderr)
	scanCfg := core.BuildScanConfig(cfg, core.Overrides{
		Exposure:      strings.ToUpper(flags.exposure),
		Confidence:    flags.confidence,
		MinConfidence: flags.minConfidence,
		Checks:        splitList(flags.checks),
		Workers:       flags.workers,
		Recursive:     flags.recursive,
		NoContext:     flags.noContext,
	}, observer)
	if flags.exposure != "" && !knownExposure(scanCfg.Exposure) {
		fmt.Fprintf(stderr, "Error: unknown exposure %q (expected one of %s)\n",
			flags.exposure, strings.Join(scoring.Exposures(), ", "))
		return exitError
	}
	scanner := core.NewScanner(scanCfg)

	var report *core.Report
	if flags.text != "" {
		text, err := readText(flags.text)
		if err != nil {
			printError(stderr, "Error reading text", err)
			return exitError
		}
		report = scanner.ScanText(ctx, "<text>", text)
	} else {
		report, err = scanner.ScanFiles(ctx, splitList(flags.file))
		if err != nil {
			printError(stderr, "Scan interrupted", err)
			return exitError
		}
	}

	if report.Patterns.Failed > 0 {
		logger.Warn("patterns failed to compile",
			zap.Int("failed", report.Patterns.Failed),
			zap.Strings("failures", report.Patterns.Failures))
	}

	result, err := formatters.Export(final.format, report, formatters.FormatterOptions{
		Verbose: final.verbose,
		NoColor: final.noColor,
	})
	if err != nil {
		printError(stderr, "Error formatting results", err)
		return exitError
	}

	// Clear sensitive data from memory
	for i := range report.Results {
		for j := range report.Results[i].Findings {
			report.Results[i].Findings[j].Clear()
		}
	}

	if err := writeOutput(flags.output, result, stdout); err != nil {
		printError(stderr, "Error writing output", err)
		return exitError
	}

	if report.Summary.Sources > 0 && report.Summary.Failed == report.Summary.Sources {
		return exitError
	}
	if flags.failOnRisk && highRisk(report) {
		return exitRisk
	}
	return exitOK
}

// loadConfiguration loads the configuration file or returns the default config
// along with the error that caused the fallback
func loadConfiguration(configFile string) (*config.Config, error) {
	return config.LoadConfigOrDefault(configFile)
}

// resolveConfiguration resolves presentation values from config file, profile and command line flags
func resolveConfiguration(cfg *config.Config, fs *flag.FlagSet, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{
		format:  "text",
		verbose: cfg.Defaults.Verbose,
		noColor: cfg.Defaults.NoColor,
		debug:   cfg.Defaults.Debug,
	}
	if cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}

	if isFlagSet(fs, "format") && flags.format != "" {
		final.format = strings.ToLower(flags.format)
	}
	if isFlagSet(fs, "verbose") {
		final.verbose = flags.verbose
	}
	if isFlagSet(fs, "no-color") {
		final.noColor = flags.noColor
	}
	if isFlagSet(fs, "debug") {
		final.debug = flags.debug
	}
	return final
}

// runValidate runs a checksum validator over values and prints one row per value
func runValidate(ctx context.Context, name string, values []string, final *finalConfiguration, stdout, stderr io.Writer) int {
	if _, ok := validators.Lookup(name); !ok {
		fmt.Fprintf(stderr, "Error: unknown checksum validator %q (available: %s)\n",
			name, strings.Join(validators.Names(), ", "))
		return exitError
	}
	if len(values) == 0 {
		fmt.Fprintln(stderr, "Error: --validate needs at least one value argument")
		return exitError
	}

	results := validators.Batch(ctx, name, values)

	if final.format == "json" {
		type row struct {
			Value string `json:"value"`
			validators.Result
		}
		rows := make([]row, len(values))
		for i := range values {
			rows[i] = row{Value: values[i], Result: results[i]}
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			printError(stderr, "Error formatting results", err)
			return exitError
		}
		fmt.Fprintln(stdout, string(data))
		return exitOK
	}

	valid := color.New(color.FgGreen)
	invalid := color.New(color.FgRed)
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tVALID\tCONFIDENCE")
	for i, r := range results {
		status := invalid.Sprint("no")
		if r.Valid {
			status = valid.Sprint("yes")
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", values[i], status, r.Confidence)
	}
	w.Flush()
	return exitOK
}

func newObserver(debug bool, logger *zap.Logger, stderr io.Writer) *observability.StandardObserver {
	if !debug {
		return observability.NewObserverWithLogger(observability.ObservabilityOff, nil)
	}
	observer := observability.NewObserverWithLogger(observability.ObservabilityDebug, logger)
	observer.DebugObserver = observability.NewDebugObserver(stderr)
	return observer
}

func logLevel(debug bool) string {
	if debug {
		return "debug"
	}
	return "warn"
}

// writeOutput writes the report to path, or to stdout when path is empty
func writeOutput(path, result string, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout, result)
		return err
	}

	cleanOutputPath := filepath.Clean(path)
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed in output path: %s", path)
	}
	abs, err := filepath.Abs(cleanOutputPath)
	if err != nil {
		return fmt.Errorf("invalid output file path %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	// Reports may contain sensitive data, owner only
	return os.WriteFile(abs, []byte(result), 0600)
}

func readText(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func highRisk(report *core.Report) bool {
	for _, tier := range []string{report.Summary.HighestTier, report.Overall.Tier} {
		if tier == scoring.TierHigh || tier == scoring.TierCritical {
			return true
		}
	}
	return false
}

func knownExposure(exposure string) bool {
	for _, e := range scoring.Exposures() {
		if e == exposure {
			return true
		}
	}
	return false
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printError(stderr io.Writer, message string, err error) {
	fmt.Fprintf(stderr, "%s: %v\n", message, err)
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
