// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risklens/internal/patterns"
)

func TestLineIndexPosition(t *testing.T) {
	text := "first\nsecond line\n\nfourth é x"
	index := NewLineIndex(text)

	tests := []struct {
		offset   int
		wantLine int
		wantCol  int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{6, 2, 1},
		{13, 2, 8},
		{19, 4, 1},
		{strings.Index(text, "x"), 4, 10},
	}
	for _, tt := range tests {
		line, col := index.Position(tt.offset)
		assert.Equal(t, tt.wantLine, line, "offset %d", tt.offset)
		assert.Equal(t, tt.wantCol, col, "offset %d", tt.offset)
	}

	assert.Equal(t, 4, index.Lines())
	assert.Equal(t, "second line", index.Line(2))
	assert.Equal(t, "", index.Line(3))
	assert.Equal(t, "", index.Line(9))
}

func TestExtractContext(t *testing.T) {
	text := "header\nname: Jane SSN 123-45-6789 on file\nfooter"
	start := strings.Index(text, "123")
	end := start + len("123-45-6789")

	ce := NewContextExtractor().WithContextChars(5)
	info := ce.ExtractContext(text, nil, start, end)

	assert.Equal(t, "name: Jane SSN 123-45-6789 on file", info.FullLine)
	assert.Equal(t, " SSN ", info.BeforeText)
	assert.Equal(t, " on f", info.AfterText)

	info = ce.WithContextLines(1).ExtractContext(text, nil, start, end)
	assert.Equal(t, "header\n SSN ", info.BeforeText)
	assert.Equal(t, " on f\nfooter", info.AfterText)
}

func TestExtractContextStopsAtRuneBoundary(t *testing.T) {
	text := "ééé 4111"
	start := strings.Index(text, "4111")

	info := NewContextExtractor().WithContextChars(2).ExtractContext(text, nil, start, start+4)
	assert.Equal(t, "é ", info.BeforeText)
	assert.Empty(t, info.AfterText)
}

func TestFromRaw(t *testing.T) {
	text := "line one\ncontact jane@example.com today"
	start := strings.Index(text, "jane")
	raws := []patterns.RawMatch{{
		PatternID:   3,
		PatternName: "EMAIL",
		Start:       start,
		End:         start + len("jane@example.com"),
		Text:        "jane@example.com",
		EntityType:  "EMAIL",
		Confidence:  0.95,
		Validator:   "email",
	}}

	findings := FromRaw(text, raws, "notes.txt", nil)
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, 2, f.LineNumber)
	assert.Equal(t, 9, f.Column)
	assert.Equal(t, "notes.txt", f.Filename)
	assert.Equal(t, "EMAIL", f.Type)
	assert.Equal(t, "email", f.Validator)
	assert.Equal(t, ConfidenceHigh, f.Level())
	assert.Equal(t, "contact jane@example.com today", f.Context.FullLine)

	assert.Nil(t, FromRaw(text, nil, "", nil))
}

func TestConfidenceLevelAndMasking(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceLevel(0.9))
	assert.Equal(t, ConfidenceMedium, ConfidenceLevel(0.6))
	assert.Equal(t, ConfidenceLow, ConfidenceLevel(0.59))

	assert.Equal(t, "*******6789", Finding{Text: "123-45-6789"}.MaskedText())
	assert.Equal(t, "***", Finding{Text: "abc"}.MaskedText())

	f := Finding{Text: "secret", Context: ContextInfo{FullLine: "secret line"}}
	f.Clear()
	assert.Empty(t, f.Text)
	assert.Empty(t, f.Context.FullLine)
}
