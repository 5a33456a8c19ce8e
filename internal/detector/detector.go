// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"

	"risklens/internal/patterns"
)

// ContextInfo stores contextual information about a match
type ContextInfo struct {
	// Text before and after the match
	BeforeText string `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText  string `json:"after_text,omitempty" yaml:"after_text,omitempty"`

	// Line containing the match
	FullLine string `json:"full_line,omitempty" yaml:"full_line,omitempty"`
}

// Finding is a match that survived validation and overlap resolution
type Finding struct {
	Text        string      `json:"text" yaml:"text"`
	Type        string      `json:"type" yaml:"type"`
	PatternName string      `json:"pattern" yaml:"pattern"`
	Validator   string      `json:"validator,omitempty" yaml:"validator,omitempty"`
	Confidence  float64     `json:"confidence" yaml:"confidence"`
	Start       int         `json:"start" yaml:"start"`
	End         int         `json:"end" yaml:"end"`
	LineNumber  int         `json:"line" yaml:"line"`
	Column      int         `json:"column" yaml:"column"`
	Filename    string      `json:"file,omitempty" yaml:"file,omitempty"`
	Context     ContextInfo `json:"context" yaml:"context"`
}

// Confidence levels used for display and filtering
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// ConfidenceLevel buckets a confidence score
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return ConfidenceHigh
	case confidence >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Level returns the confidence bucket of the finding
func (f Finding) Level() string {
	return ConfidenceLevel(f.Confidence)
}

// MaskedText hides all but the last four characters of the match
func (f Finding) MaskedText() string {
	runes := []rune(f.Text)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

// Clear wipes the matched text and its context
func (f *Finding) Clear() {
	f.Text = ""
	f.Context = ContextInfo{}
}

// FromRaw builds findings for raw matches over text, adding line positions and context
func FromRaw(text string, raws []patterns.RawMatch, filename string, ce *ContextExtractor) []Finding {
	if len(raws) == 0 {
		return nil
	}
	if ce == nil {
		ce = NewContextExtractor()
	}
	index := NewLineIndex(text)

	findings := make([]Finding, 0, len(raws))
	for _, raw := range raws {
		line, col := index.Position(raw.Start)
		findings = append(findings, Finding{
			Text:        raw.Text,
			Type:        raw.EntityType,
			PatternName: raw.PatternName,
			Validator:   raw.Validator,
			Confidence:  raw.Confidence,
			Start:       raw.Start,
			End:         raw.End,
			LineNumber:  line,
			Column:      col,
			Filename:    filename,
			Context:     ce.ExtractContext(text, index, raw.Start, raw.End),
		})
	}
	return findings
}
