// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"

	"risklens/internal/core"
	"risklens/internal/detector"
	"risklens/internal/formatters"
	"risklens/internal/formatters/shared"
	"risklens/internal/scoring"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"boldred": color.New(color.FgRed, color.Bold),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable report with colored risk tiers and finding tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report *core.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder

	for i, r := range report.Results {
		if i > 0 {
			builder.WriteString("\n")
		}
		f.appendSource(&builder, r, options)
	}

	if len(report.Results) > 1 {
		builder.WriteString("\n")
		f.appendSummary(&builder, report, options)
	}

	if report.Patterns.Failed > 0 {
		f.paint(&builder, "yellow", options, "\n%d of %d patterns failed to compile\n",
			report.Patterns.Failed, report.Patterns.Total)
		if options.Verbose {
			for _, failure := range report.Patterns.Failures {
				fmt.Fprintf(&builder, "- %s\n", failure)
			}
		}
	}

	return builder.String(), nil
}

// paint writes formatted text in the named color unless colors are disabled
func (f *Formatter) paint(builder *strings.Builder, name string, options formatters.FormatterOptions, format string, args ...any) {
	if options.NoColor {
		fmt.Fprintf(builder, format, args...)
		return
	}
	f.colors[name].Fprintf(builder, format, args...)
}

// tierColor maps a risk tier to its display color
func tierColor(tier string) string {
	switch tier {
	case scoring.TierCritical:
		return "boldred"
	case scoring.TierHigh:
		return "red"
	case scoring.TierMedium:
		return "yellow"
	case scoring.TierLow:
		return "green"
	default:
		return "white"
	}
}

// levelColor maps a confidence level to its display color
func levelColor(level string) string {
	switch level {
	case detector.ConfidenceHigh:
		return "red"
	case detector.ConfidenceMedium:
		return "yellow"
	default:
		return "green"
	}
}

// appendSource writes the header, findings and risk explanation of one input
func (f *Formatter) appendSource(builder *strings.Builder, r core.Result, options formatters.FormatterOptions) {
	f.paint(builder, "white", options, "=== %s ===\n", r.Source)

	if r.Failed() {
		f.paint(builder, "red", options, "Error (%s): %s\n", r.ErrorType, r.Error)
		return
	}

	f.appendRisk(builder, "Risk", r.Risk, options)

	if len(r.Findings) == 0 {
		builder.WriteString("No sensitive data found.\n")
		return
	}

	findings := append([]detector.Finding(nil), r.Findings...)
	shared.SortFindings(findings)

	if options.Verbose {
		f.appendCounts(builder, r, options)
		for _, finding := range findings {
			f.appendDetailedFinding(builder, finding, options)
		}
		return
	}

	f.appendHeaders(builder, findings, options)
	for _, finding := range findings {
		f.appendSummaryLine(builder, finding, findings, options)
	}
}

// appendRisk writes a score line followed by its explanation
func (f *Formatter) appendRisk(builder *strings.Builder, label string, risk scoring.Result, options formatters.FormatterOptions) {
	fmt.Fprintf(builder, "%s: ", label)
	f.paint(builder, tierColor(risk.Tier), options, "%d/100 %s\n", risk.Score, risk.Tier)

	if risk.Score == 0 {
		return
	}

	fmt.Fprintf(builder, "  content %.1f x exposure %.1f (%s)", risk.ContentScore, risk.ExposureMultiplier, risk.Exposure)
	if risk.CoOccurrenceMultiplier > 1 {
		fmt.Fprintf(builder, ", co-occurrence %.1f", risk.CoOccurrenceMultiplier)
	}
	builder.WriteString("\n")

	if len(risk.TriggeredRules) > 0 {
		builder.WriteString("  rules: ")
		f.paint(builder, "magenta", options, "%s\n", strings.Join(risk.TriggeredRules, ", "))
	}
	if len(risk.Categories) > 0 {
		fmt.Fprintf(builder, "  categories: %s\n", strings.Join(risk.Categories, ", "))
	}
}

// appendCounts writes the entity type breakdown with candidate statistics
func (f *Formatter) appendCounts(builder *strings.Builder, r core.Result, options formatters.FormatterOptions) {
	parts := make([]string, 0, len(r.Counts))
	for _, t := range core.SortedTypes(r.Counts) {
		parts = append(parts, fmt.Sprintf("%s=%d", t, r.Counts[t]))
	}
	f.paint(builder, "cyan", options, "Entities: ")
	fmt.Fprintf(builder, "%s (candidates %d, context suppressed %d, filtered %d, overlaps removed %d)\n",
		strings.Join(parts, ", "), r.Candidates, r.Suppressed, r.Filtered, r.Overlaps)
	if r.Extractor != "" {
		fmt.Fprintf(builder, "Extractor: %s", r.Extractor)
		if r.PageCount > 0 {
			fmt.Fprintf(builder, " (%d pages)", r.PageCount)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, findings []detector.Finding, options formatters.FormatterOptions) {
	matchWidth := f.calculateMatchColumnWidth(findings, options)
	f.paint(builder, "white", options, "%-8s %-20s %-6s %-14s %-*s %s\n",
		"LEVEL", "TYPE", "CONF", "POSITION", matchWidth, "MATCH", "VALIDATOR")

	totalWidth := 8 + 1 + 20 + 1 + 6 + 1 + 14 + 1 + matchWidth + 1 + 10
	f.paint(builder, "white", options, "%s\n", strings.Repeat("-", totalWidth))
}

// calculateMatchColumnWidth calculates the optimal width for the match column
func (f *Formatter) calculateMatchColumnWidth(findings []detector.Finding, options formatters.FormatterOptions) int {
	maxWidth := 10
	for _, finding := range findings {
		if n := len([]rune(f.flatten(shared.DisplayText(finding, options)))); n > maxWidth {
			maxWidth = n
		}
	}
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

func (f *Formatter) flatten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\t", " ")
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, finding detector.Finding, all []detector.Finding, options formatters.FormatterOptions) {
	level := finding.Level()
	f.paint(builder, levelColor(level), options, "[%-6s] ", level)

	typeDisplay := finding.Type
	if len(typeDisplay) > 20 {
		typeDisplay = typeDisplay[:17] + "..."
	}
	f.paint(builder, "cyan", options, "%-20s ", typeDisplay)
	f.paint(builder, "blue", options, "%-6.2f ", finding.Confidence)
	f.paint(builder, "magenta", options, "%-14s ", fmt.Sprintf("%d:%d", finding.LineNumber, finding.Column))

	targetWidth := f.calculateMatchColumnWidth(all, options)
	matchText := f.flatten(shared.DisplayText(finding, options))
	runes := []rune(matchText)
	if len(runes) > targetWidth {
		matchText = string(runes[:targetWidth-3]) + "..."
	}
	if padding := targetWidth - len([]rune(matchText)); padding > 0 {
		matchText += strings.Repeat(" ", padding)
	}

	validator := finding.Validator
	if validator == "" {
		validator = "-"
	}
	fmt.Fprintf(builder, "%s %s\n", matchText, validator)
}

// appendDetailedFinding adds detailed finding information to the string builder
func (f *Formatter) appendDetailedFinding(builder *strings.Builder, finding detector.Finding, options formatters.FormatterOptions) {
	f.paint(builder, "white", options, "--- %s ---\n", finding.Type)

	f.paint(builder, "cyan", options, "Match found in ")
	f.paint(builder, "white", options, "%s", filepath.Base(finding.Filename))
	f.paint(builder, "cyan", options, " at ")
	f.paint(builder, "magenta", options, "line %d, column %d", finding.LineNumber, finding.Column)
	f.paint(builder, "cyan", options, ": %s\n", shared.DisplayText(finding, options))

	fmt.Fprintf(builder, "Pattern: %s\n", finding.PatternName)
	if finding.Validator != "" {
		fmt.Fprintf(builder, "Validator: %s\n", finding.Validator)
	}

	level := finding.Level()
	f.paint(builder, "cyan", options, "Confidence: ")
	f.paint(builder, "white", options, "%.2f ", finding.Confidence)
	f.paint(builder, levelColor(level), options, "(%s)\n", level)

	ctx := finding.Context
	if ctx.BeforeText != "" || ctx.AfterText != "" {
		f.paint(builder, "cyan", options, "Context:\n")
		fmt.Fprintf(builder, "... %s", ctx.BeforeText)
		f.paint(builder, "yellow", options, "[%s]", shared.DisplayText(finding, options))
		fmt.Fprintf(builder, "%s ...\n", ctx.AfterText)
	}

	builder.WriteString("\n")
}

// appendSummary writes the aggregate section for multi-source reports
func (f *Formatter) appendSummary(builder *strings.Builder, report *core.Report, options formatters.FormatterOptions) {
	s := report.Summary
	f.paint(builder, "white", options, "=== Summary ===\n")
	fmt.Fprintf(builder, "Sources: %d scanned, %d failed\n", s.Sources, s.Failed)
	fmt.Fprintf(builder, "Findings: %d\n", s.Findings)

	if len(s.ByType) > 0 {
		parts := make([]string, 0, len(s.ByType))
		for _, t := range core.SortedTypes(s.ByType) {
			parts = append(parts, fmt.Sprintf("%s=%d", t, s.ByType[t]))
		}
		fmt.Fprintf(builder, "By type: %s\n", strings.Join(parts, ", "))
	}

	fmt.Fprintf(builder, "Highest source risk: ")
	f.paint(builder, tierColor(s.HighestTier), options, "%d/100 %s\n", s.HighestScore, s.HighestTier)
	f.appendRisk(builder, "Combined risk", report.Overall, options)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
