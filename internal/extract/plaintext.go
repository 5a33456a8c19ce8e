// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"risklens/internal/resilience"
)

// DefaultMaxTextBytes limits plain text files to 100MB
const DefaultMaxTextBytes = 100 * 1024 * 1024

var textExtensions = []string{
	".txt", ".text", ".log", ".md", ".rst", ".csv", ".tsv", ".json", ".jsonl", ".yaml", ".yml",
	".xml", ".html", ".htm", ".ini", ".cfg", ".conf", ".env", ".properties", ".sql",
	".go", ".py", ".js", ".ts", ".java", ".rb", ".sh", ".tf", ".toml",
}

// PlainTextExtractor reads text files as-is. Files with an unknown extension
// are accepted when their first bytes look like text.
type PlainTextExtractor struct {
	MaxBytes int64
}

// NewPlainTextExtractor creates a plain text extractor with the default size limit
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{MaxBytes: DefaultMaxTextBytes}
}

func (p *PlainTextExtractor) Name() string { return "plaintext" }

func (p *PlainTextExtractor) Extensions() []string { return textExtensions }

func (p *PlainTextExtractor) CanProcess(filePath string) bool {
	if hasExtension(filePath, textExtensions) {
		return true
	}
	return isTextFile(filePath)
}

func (p *PlainTextExtractor) Extract(filePath string) (*Content, error) {
	cleanPath := filepath.Clean(filePath)
	file, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if p.MaxBytes > 0 && info.Size() > p.MaxBytes {
		return nil, resilience.NewInputError(
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), p.MaxBytes), nil)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(cleanPath)), ".")
	if format == "" {
		format = "text"
	}
	return newContent(filePath, format, p.Name(), text), nil
}

// isTextFile checks the first 512 bytes: no NUL bytes and mostly printable
func isTextFile(filePath string) bool {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return false
	}
	buffer = buffer[:n]

	printable := 0
	for _, b := range buffer {
		if b == 0 {
			return false
		}
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' || b >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(buffer)) > 0.95
}
