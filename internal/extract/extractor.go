// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns files into scannable text.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"risklens/internal/observability"
	"risklens/internal/resilience"
)

// Content is the text pulled out of one file
type Content struct {
	Path      string            `json:"path" yaml:"path"`
	Filename  string            `json:"filename" yaml:"filename"`
	Text      string            `json:"-" yaml:"-"`
	Format    string            `json:"format" yaml:"format"`
	Extractor string            `json:"extractor" yaml:"extractor"`
	PageCount int               `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	WordCount int               `json:"word_count" yaml:"word_count"`
	LineCount int               `json:"line_count" yaml:"line_count"`
	Metadata  map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Extractor extracts text from the files it recognises
type Extractor interface {
	// Name identifies the extractor in reports
	Name() string

	// Extensions lists the lower-case extensions handled, including the dot
	Extensions() []string

	// CanProcess checks if this extractor can handle the given file
	CanProcess(filePath string) bool

	// Extract reads the file and returns its text
	Extract(filePath string) (*Content, error)
}

// Manager picks the first registered extractor that accepts a file
type Manager struct {
	extractors []Extractor
	observer   *observability.StandardObserver
}

// NewManager returns a manager with the PDF, image and plain text extractors
// registered, in that order
func NewManager(observer *observability.StandardObserver) *Manager {
	m := &Manager{observer: observer}
	m.Register(NewPDFExtractor())
	m.Register(NewImageExtractor())
	m.Register(NewPlainTextExtractor())
	return m
}

// Register appends an extractor; earlier registrations win
func (m *Manager) Register(e Extractor) {
	m.extractors = append(m.extractors, e)
}

// ForPath returns the extractor for a file, or nil when none accepts it
func (m *Manager) ForPath(filePath string) Extractor {
	for _, e := range m.extractors {
		if e.CanProcess(filePath) {
			return e
		}
	}
	return nil
}

// SupportedExtensions returns every registered extension, sorted
func (m *Manager) SupportedExtensions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.extractors {
		for _, ext := range e.Extensions() {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Extract reads filePath with the matching extractor
func (m *Manager) Extract(ctx context.Context, filePath string) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := m.ForPath(filePath)
	if e == nil {
		return nil, resilience.NewInputError(fmt.Sprintf("unsupported file type: %s", filepath.Base(filePath)), nil)
	}

	finishTiming := m.observer.StartTiming("extract", e.Name(), filePath)
	content, err := e.Extract(filePath)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	finishTiming(true, map[string]interface{}{
		"chars": len(content.Text),
		"words": content.WordCount,
	})
	return content, nil
}

// newContent fills the fields shared by every extractor
func newContent(filePath, format, extractor, text string) *Content {
	c := &Content{
		Path:      filePath,
		Filename:  filepath.Base(filePath),
		Format:    format,
		Extractor: extractor,
		Metadata:  make(map[string]string),
	}
	c.setText(text)
	return c
}

func (c *Content) setText(text string) {
	c.Text = text
	c.WordCount = len(strings.Fields(text))
	if text == "" {
		c.LineCount = 0
		return
	}
	c.LineCount = strings.Count(text, "\n") + 1
}

func hasExtension(filePath string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// renderFields writes key: value lines in key order, skipping empty values
func renderFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(fields[k])
		b.WriteString("\n")
	}
	return b.String()
}
