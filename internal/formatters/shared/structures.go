// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"sort"

	"risklens/internal/core"
	"risklens/internal/detector"
	"risklens/internal/formatters"
	"risklens/internal/scoring"
)

// ReportView is the document shape shared by the JSON and YAML formatters
type ReportView struct {
	Results    []SourceView      `json:"results" yaml:"results"`
	Summary    core.Summary      `json:"summary" yaml:"summary"`
	Overall    scoring.Result    `json:"overall" yaml:"overall"`
	Patterns   core.PatternStats `json:"patterns" yaml:"patterns"`
	DurationMS int64             `json:"duration_ms" yaml:"duration_ms"`
}

// SourceView represents one scanned input
type SourceView struct {
	Source     string         `json:"source" yaml:"source"`
	Extractor  string         `json:"extractor,omitempty" yaml:"extractor,omitempty"`
	PageCount  int            `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	Findings   []FindingView  `json:"findings" yaml:"findings"`
	Counts     map[string]int `json:"counts" yaml:"counts"`
	Risk       scoring.Result `json:"risk" yaml:"risk"`
	Candidates int            `json:"candidates" yaml:"candidates"`
	Suppressed int            `json:"context_suppressed" yaml:"context_suppressed"`
	Adjusted   int            `json:"context_adjusted" yaml:"context_adjusted"`
	Filtered   int            `json:"filtered" yaml:"filtered"`
	Overlaps   int            `json:"overlaps_removed" yaml:"overlaps_removed"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType  string         `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}

// FindingView represents a single finding in JSON/YAML format
type FindingView struct {
	Text            string  `json:"text" yaml:"text"`
	Type            string  `json:"type" yaml:"type"`
	PatternName     string  `json:"pattern" yaml:"pattern"`
	Validator       string  `json:"validator,omitempty" yaml:"validator,omitempty"`
	Confidence      float64 `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string  `json:"confidence_level" yaml:"confidence_level"`
	LineNumber      int     `json:"line_number" yaml:"line_number"`
	Column          int     `json:"column" yaml:"column"`
	Start           int     `json:"start" yaml:"start"`
	End             int     `json:"end" yaml:"end"`
	FullLine        string  `json:"full_line,omitempty" yaml:"full_line,omitempty"`
	BeforeText      string  `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText       string  `json:"after_text,omitempty" yaml:"after_text,omitempty"`
}

// DisplayText returns the matched text, masked unless the options reveal it
func DisplayText(f detector.Finding, options formatters.FormatterOptions) string {
	if options.ShowMatch || options.Verbose {
		return f.Text
	}
	return f.MaskedText()
}

// SortFindings orders findings by confidence level, then confidence, then position
func SortFindings(findings []detector.Finding) {
	rank := map[string]int{detector.ConfidenceHigh: 0, detector.ConfidenceMedium: 1, detector.ConfidenceLow: 2}
	sort.SliceStable(findings, func(i, j int) bool {
		li, lj := rank[findings[i].Level()], rank[findings[j].Level()]
		if li != lj {
			return li < lj
		}
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		return findings[i].Start < findings[j].Start
	})
}

// ConvertReport converts a scan report to the JSON/YAML document shape
func ConvertReport(report *core.Report, options formatters.FormatterOptions) ReportView {
	view := ReportView{
		Results:    make([]SourceView, 0, len(report.Results)),
		Summary:    report.Summary,
		Overall:    report.Overall,
		Patterns:   report.Patterns,
		DurationMS: report.Duration.Milliseconds(),
	}

	for _, r := range report.Results {
		sv := SourceView{
			Source:     r.Source,
			Extractor:  r.Extractor,
			PageCount:  r.PageCount,
			Findings:   make([]FindingView, 0, len(r.Findings)),
			Counts:     r.Counts,
			Risk:       r.Risk,
			Candidates: r.Candidates,
			Suppressed: r.Suppressed,
			Adjusted:   r.Adjusted,
			Filtered:   r.Filtered,
			Overlaps:   r.Overlaps,
			Error:      r.Error,
			ErrorType:  r.ErrorType,
		}
		if sv.Counts == nil {
			sv.Counts = map[string]int{}
		}

		for _, f := range r.Findings {
			fv := FindingView{
				Text:            DisplayText(f, options),
				Type:            f.Type,
				PatternName:     f.PatternName,
				Validator:       f.Validator,
				Confidence:      f.Confidence,
				ConfidenceLevel: f.Level(),
				LineNumber:      f.LineNumber,
				Column:          f.Column,
				Start:           f.Start,
				End:             f.End,
			}
			if options.Verbose {
				fv.FullLine = f.Context.FullLine
				fv.BeforeText = f.Context.BeforeText
				fv.AfterText = f.Context.AfterText
			}
			sv.Findings = append(sv.Findings, fv)
		}

		view.Results = append(view.Results, sv)
	}

	return view
}
