// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"risklens/internal/core"
	"risklens/internal/formatters"
	"risklens/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated findings with per-source risk for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// Format writes one row per finding. Sources without findings get a single row
// with empty finding columns so that their risk and errors are still listed.
func (f *Formatter) Format(report *core.Report, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Source", "Type", "Pattern", "Confidence Level", "Confidence", "Line", "Column", "Text",
		"Risk Score", "Risk Tier", "Error"}
	if options.Verbose {
		headers = append(headers, "Context")
	}

	rows := []string{strings.Join(headers, ",")}

	for _, r := range report.Results {
		risk := []string{fmt.Sprintf("%d", r.Risk.Score), r.Risk.Tier, f.escapeCSVField(r.Error)}

		if len(r.Findings) == 0 {
			row := append([]string{f.escapeCSVField(r.Source)}, make([]string, 7)...)
			row = append(row, risk...)
			if options.Verbose {
				row = append(row, "")
			}
			rows = append(rows, strings.Join(row, ","))
			continue
		}

		for _, finding := range r.Findings {
			row := []string{
				f.escapeCSVField(r.Source),
				f.escapeCSVField(finding.Type),
				f.escapeCSVField(finding.PatternName),
				finding.Level(),
				fmt.Sprintf("%.2f", finding.Confidence),
				fmt.Sprintf("%d", finding.LineNumber),
				fmt.Sprintf("%d", finding.Column),
				f.escapeCSVField(shared.DisplayText(finding, options)),
			}
			row = append(row, risk...)
			if options.Verbose {
				row = append(row, f.escapeCSVField(finding.Context.FullLine))
			}
			rows = append(rows, strings.Join(row, ","))
		}
	}

	return strings.Join(rows, "\n") + "\n", nil
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes values that a spreadsheet would evaluate as formulas
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
