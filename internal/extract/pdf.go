// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"risklens/internal/resilience"
)

// DefaultMaxPDFPages bounds text extraction on very large documents
const DefaultMaxPDFPages = 50

const (
	pageBreak       = "\n--- PAGE BREAK ---\n"
	metadataSection = "\n--- Document Metadata ---\n"
)

// PDFExtractor extracts page text with ledongthuc/pdf and the document
// information dictionary with pdfcpu
type PDFExtractor struct {
	MaxPages int
}

// NewPDFExtractor creates a PDF extractor with the default page limit
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{MaxPages: DefaultMaxPDFPages}
}

func (p *PDFExtractor) Name() string { return "pdf" }

func (p *PDFExtractor) Extensions() []string { return []string{".pdf"} }

func (p *PDFExtractor) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.Extensions())
}

func (p *PDFExtractor) Extract(filePath string) (*Content, error) {
	text, pages, err := p.extractText(filePath)
	if err != nil {
		return nil, resilience.NewExtractionError("error extracting PDF text", err)
	}

	content := newContent(filePath, "pdf", p.Name(), "")
	content.PageCount = pages

	// metadata is best effort: a broken info dictionary must not hide the page text
	if meta, err := pdfMetadata(filePath); err == nil && len(meta) > 0 {
		for k, v := range meta {
			content.Metadata[k] = v
		}
		text += metadataSection + renderFields(meta)
	} else if err != nil {
		content.Metadata["metadata_error"] = err.Error()
	}

	content.setText(text)
	return content, nil
}

func (p *PDFExtractor) extractText(filePath string) (string, int, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	limit := total
	if p.MaxPages > 0 && limit > p.MaxPages {
		limit = p.MaxPages
	}

	var buf bytes.Buffer
	for i := 1; i <= limit; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := pageTextByRow(page)
		if err != nil || strings.TrimSpace(pageText) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(pageBreak)
		}
		buf.WriteString(pageText)
	}

	return buf.String(), total, nil
}

// pageTextByRow rebuilds lines from positioned text, top of the page first
func pageTextByRow(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		line := rowText(row.Content)
		if strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the fragments of one row left to right, inserting a space
// where the gap exceeds a fifth of the font size
func rowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if sorted[i+1].X-(t.X+t.W) > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// pdfMetadata reads the document information dictionary
func pdfMetadata(filePath string) (map[string]string, error) {
	ctx, err := api.ReadContextFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading PDF structure: %w", err)
	}

	meta := map[string]string{
		"Title":        ctx.Title,
		"Author":       ctx.Author,
		"Subject":      ctx.Subject,
		"Keywords":     ctx.Keywords,
		"Creator":      ctx.Creator,
		"Producer":     ctx.Producer,
		"CreationDate": ctx.XRefTable.CreationDate,
		"ModDate":      ctx.XRefTable.ModDate,
	}
	for k, v := range ctx.Properties {
		meta[k] = v
	}
	if ctx.Encrypt != nil {
		meta["Encrypted"] = strconv.FormatBool(true)
	}

	for k, v := range meta {
		if strings.TrimSpace(v) == "" {
			delete(meta, k)
		}
	}
	return meta, nil
}
