// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ContextExtractor extracts context from text around a specific match
type ContextExtractor struct {
	// Number of lines before and after the match to consider
	ContextLines int

	// Number of bytes before and after the match to consider, trimmed to rune boundaries
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextLines: 0,
		ContextChars: 50,
	}
}

// WithContextLines sets the number of context lines
func (ce *ContextExtractor) WithContextLines(lines int) *ContextExtractor {
	ce.ContextLines = lines
	return ce
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// LineIndex maps byte offsets to 1-based line and column numbers
type LineIndex struct {
	text   string
	starts []int
}

// NewLineIndex records the start offset of every line in text
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Position returns the line and column (both 1-based, column in runes) of offset
func (li *LineIndex) Position(offset int) (int, int) {
	line := sort.SearchInts(li.starts, offset+1) - 1
	if line < 0 {
		line = 0
	}
	col := utf8.RuneCountInString(li.text[li.starts[line]:offset]) + 1
	return line + 1, col
}

// Line returns the text of a 1-based line without its newline
func (li *LineIndex) Line(n int) string {
	if n < 1 || n > len(li.starts) {
		return ""
	}
	start := li.starts[n-1]
	end := len(li.text)
	if n < len(li.starts) {
		end = li.starts[n] - 1
	}
	return strings.TrimSuffix(li.text[start:end], "\r")
}

// Lines returns the number of lines
func (li *LineIndex) Lines() int {
	return len(li.starts)
}

// ExtractContext returns the text around [start, end) within its line, plus
// ContextLines whole lines on either side
func (ce *ContextExtractor) ExtractContext(text string, index *LineIndex, start, end int) ContextInfo {
	if index == nil {
		index = NewLineIndex(text)
	}
	line, _ := index.Position(start)
	lineStart := index.starts[line-1]
	fullLine := index.Line(line)
	lineEnd := lineStart + len(fullLine)

	info := ContextInfo{FullLine: fullLine}

	before := max(lineStart, start-ce.ContextChars)
	info.BeforeText = text[runeStart(text, before):start]

	matchEnd := min(end, lineEnd)
	after := min(lineEnd, matchEnd+ce.ContextChars)
	if after > matchEnd {
		info.AfterText = text[matchEnd:runeStart(text, after)]
	}

	var beforeLines, afterLines []string
	for n := max(1, line-ce.ContextLines); n < line; n++ {
		beforeLines = append(beforeLines, index.Line(n))
	}
	for n := line + 1; n <= min(index.Lines(), line+ce.ContextLines); n++ {
		afterLines = append(afterLines, index.Line(n))
	}
	if len(beforeLines) > 0 {
		info.BeforeText = strings.Join(beforeLines, "\n") + "\n" + info.BeforeText
	}
	if len(afterLines) > 0 {
		info.AfterText = info.AfterText + "\n" + strings.Join(afterLines, "\n")
	}

	return info
}

// runeStart moves i back to the start of the rune containing it
func runeStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
