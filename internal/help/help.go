// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"risklens/internal/config"
	"risklens/internal/formatters"
	"risklens/internal/patterns"
	"risklens/internal/scoring"
	"risklens/internal/validators"
)

// System renders help and listings for the command line
type System struct {
	out     io.Writer
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system writing to stdout
func NewSystem(noColor bool) *System {
	return NewSystemTo(os.Stdout, noColor)
}

// NewSystemTo creates a help system writing to out
func NewSystemTo(out io.Writer, noColor bool) *System {
	return &System{
		out:     out,
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
}

func (h *System) printf(name, format string, args ...any) {
	if h.noColor {
		fmt.Fprintf(h.out, format, args...)
		return
	}
	h.colors[name].Fprintf(h.out, format, args...)
}

func (h *System) table() *tabwriter.Writer {
	return tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.printf("title", "RiskLens - Sensitive Data Detection and Risk Scoring\n")
	fmt.Fprintln(h.out, "====================================================")
	fmt.Fprintln(h.out)
	h.printf("header", "USAGE:\n")
	fmt.Fprintln(h.out, "  risklens --file <path>[,<path>...] [options]")
	fmt.Fprintln(h.out, "  risklens --text \"<text>\" [options]")
	fmt.Fprintln(h.out, "  risklens --validate <validator> <value> [<value>...]")
	fmt.Fprintln(h.out)

	h.printf("header", "OPTIONS:\n")
	w := h.table()
	fmt.Fprintln(w, "  --file\t<paths>\tComma separated files or directories to scan")
	fmt.Fprintln(w, "  --recursive\t\tDescend into subdirectories")
	fmt.Fprintln(w, "  --text\t<text>\tScan a literal text instead of files")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintf(w, "  --exposure\t<level>\tExposure of the content: %s (default: PRIVATE)\n", strings.Join(scoring.Exposures(), ", "))
	fmt.Fprintln(w, "  --confidence\t<0-1>\tScoring confidence; 0 uses the mean finding confidence (default: 0.85)")
	fmt.Fprintln(w, "  --min-confidence\t<0-1>\tDrop findings below this confidence")
	fmt.Fprintln(w, "  --checks\t<types>\tComma separated entity types to report (default: all)")
	fmt.Fprintln(w, "  --workers\t<n>\tWorker count for batch stages (default: CPU count, at most 8)")
	fmt.Fprintln(w, "  --no-context\t\tSkip hotword and deny list review of candidates")
	fmt.Fprintf(w, "  --format\t<format>\tOutput format: %s (default: text)\n", strings.Join(formatters.List(), ", "))
	fmt.Fprintln(w, "  --output\t<path>\tWrite the report to a file instead of stdout")
	fmt.Fprintln(w, "  --fail-on-risk\t\tExit with status 2 when the highest tier is HIGH or CRITICAL")
	fmt.Fprintln(w, "  --validate\t<name>\tRun a checksum validator over the remaining arguments")
	fmt.Fprintln(w, "  --list-patterns\t\tList the active pattern catalog")
	fmt.Fprintln(w, "  --list-validators\t\tList validators and checksums")
	fmt.Fprintln(w, "  --list-profiles\t\tList profiles in the config file")
	fmt.Fprintln(w, "  --list-formats\t\tList output formats")
	fmt.Fprintln(w, "  --list-rules\t\tShow entity weights, co-occurrence rules, exposures and tiers")
	fmt.Fprintln(w, "  --describe\t<type>\tShow how an entity type is detected and scored")
	fmt.Fprintln(w, "  --verbose\t\tShow matched text and context for each finding")
	fmt.Fprintln(w, "  --debug\t\tLog pipeline steps and timings to stderr")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	w.Flush()

	fmt.Fprintln(h.out)
	h.printf("header", "EXAMPLES:\n")
	h.printf("example", "  risklens --file records.csv\n")
	h.printf("example", "  risklens --file ./exports --recursive --exposure PUBLIC --format json\n")
	h.printf("example", "  risklens --text \"SSN 123-45-6789\" --verbose\n")
	h.printf("example", "  risklens --validate credit_card 4532015112830366 4532015112830367\n")
	h.printf("example", "  risklens --file . --config risklens.yaml --profile ci --fail-on-risk\n")

	fmt.Fprintln(h.out)
	h.printf("header", "CONFIGURATION:\n")
	fmt.Fprintln(h.out, "  Searched in order: ./risklens.yaml, ./risklens.yml, ./.risklens.yaml, ./.risklens.yml,")
	fmt.Fprintln(h.out, "  ~/.risklens.yaml, $XDG_CONFIG_HOME/risklens/config.yaml")
}

// ShowValidators lists every validator with its gate boost and checksum availability
func (h *System) ShowValidators() {
	h.printf("title", "Validators\n")
	fmt.Fprintln(h.out)

	w := h.table()
	fmt.Fprintln(w, "  NAME\tBOOST\tCHECKSUM\tDESCRIPTION\tEXAMPLE")
	for _, info := range validators.Describe() {
		checksum := "-"
		if info.Checksum {
			checksum = "yes"
		}
		fmt.Fprintf(w, "  %s\t%+.2f\t%s\t%s\t%s\n", info.Name, info.GateBoost, checksum, info.Description, info.Example)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Validators marked as checksum can be run with --validate <name> <values...>.")
}

// ShowPatterns lists a pattern catalog with the scoring weight of each entity type
func (h *System) ShowPatterns(specs []patterns.PatternSpec) {
	h.printf("title", "Patterns (%d)\n", len(specs))
	fmt.Fprintln(h.out)

	w := h.table()
	fmt.Fprintln(w, "  NAME\tENTITY\tCONF\tVALIDATOR\tWEIGHT\tCATEGORY")
	for _, spec := range specs {
		validator := spec.Validator
		if validator == "" {
			validator = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%.2f\t%s\t%d\t%s\n",
			spec.DisplayName(), spec.EntityType, spec.Confidence, validator,
			scoring.Weight(spec.EntityType), scoring.Category(spec.EntityType))
	}
	w.Flush()
}

// ShowProfiles lists the profiles of a configuration
func (h *System) ShowProfiles(cfg *config.Config) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Fprintln(h.out, "No profiles defined.")
		return
	}

	h.printf("title", "Profiles\n")
	fmt.Fprintln(h.out)
	w := h.table()
	fmt.Fprintln(w, "  NAME\tEXPOSURE\tFORMAT\tMIN CONF\tDESCRIPTION")
	for _, name := range names {
		p := cfg.GetProfile(name)
		exposure := p.Exposure
		if exposure == "" {
			exposure = "-"
		}
		format := p.Format
		if format == "" {
			format = "-"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%.2f\t%s\n", name, exposure, format, p.MinConfidence, p.Description)
	}
	w.Flush()
}

// ShowFormats lists the registered output formats
func (h *System) ShowFormats() {
	w := h.table()
	fmt.Fprintln(w, "  FORMAT\tEXTENSION\tDESCRIPTION")
	for _, info := range formatters.GetSupportedFormats() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", info.Name, info.Extension, info.Description)
	}
	w.Flush()
}

// ShowScoring explains the scoring tables
func (h *System) ShowScoring() {
	h.printf("title", "Risk Scoring\n")
	fmt.Fprintln(h.out)

	h.printf("header", "CO-OCCURRENCE RULES:\n")
	w := h.table()
	for _, rule := range scoring.Rules() {
		fmt.Fprintf(w, "  %s\tx%.1f\t%s\n", rule.Name, rule.Multiplier, strings.Join(rule.Requires, " + "))
	}
	w.Flush()
	fmt.Fprintln(h.out)

	h.printf("header", "EXPOSURE:\n")
	w = h.table()
	for _, e := range scoring.Exposures() {
		fmt.Fprintf(w, "  %s\tx%.1f\n", e, scoring.ExposureMultiplier(e))
	}
	w.Flush()
	fmt.Fprintln(h.out)

	h.printf("header", "TIERS:\n")
	for _, t := range []struct {
		name  string
		color string
		score int
	}{
		{scoring.TierCritical, "negative", 80},
		{scoring.TierHigh, "negative", 55},
		{scoring.TierMedium, "warning", 31},
		{scoring.TierLow, "positive", 11},
		{scoring.TierMinimal, "positive", 0},
	} {
		fmt.Fprint(h.out, "  ")
		h.printf(t.color, "%-9s", t.name)
		fmt.Fprintf(h.out, " score >= %d\n", t.score)
	}
}

// ShowEntity explains how one entity type is detected and scored. It returns
// false when nothing in the catalog or scoring tables knows the type.
func (h *System) ShowEntity(entityType string, specs []patterns.PatternSpec) bool {
	name := scoring.Normalize(entityType)

	var matching []patterns.PatternSpec
	for _, spec := range specs {
		if scoring.Normalize(spec.EntityType) == name {
			matching = append(matching, spec)
		}
	}
	category := scoring.Category(name)
	if len(matching) == 0 && category == scoring.CategoryUnknown {
		h.printf("negative", "Error: entity type '%s' not found.\n", entityType)
		fmt.Fprintln(h.out, "Use 'risklens --list-patterns' to see the active catalog.")
		return false
	}

	h.printf("title", "%s\n", name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(name)))
	fmt.Fprintf(h.out, "Weight: %d\n", scoring.Weight(name))
	fmt.Fprintf(h.out, "Category: %s\n", category)

	var rules []string
	for _, rule := range scoring.Rules() {
		for _, c := range rule.Requires {
			if c == category {
				rules = append(rules, fmt.Sprintf("%s (x%.1f)", rule.Name, rule.Multiplier))
				break
			}
		}
	}
	if len(rules) > 0 {
		fmt.Fprintf(h.out, "Rules: %s\n", strings.Join(rules, ", "))
	}

	if len(matching) > 0 {
		fmt.Fprintln(h.out)
		h.printf("header", "PATTERNS:\n")
		for _, spec := range matching {
			fmt.Fprint(h.out, "  - ")
			h.printf("item", "%s", spec.DisplayName())
			fmt.Fprintf(h.out, " (confidence %.2f", spec.Confidence)
			if spec.Validator != "" {
				fmt.Fprintf(h.out, ", validator %s", spec.Validator)
			}
			fmt.Fprintln(h.out, ")")
		}
	}
	return true
}
