// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var imageExtensions = []string{".jpg", ".jpeg", ".tif", ".tiff", ".heic"}

// ImageExtractor renders EXIF tags as "Tag: value" lines so that serial
// numbers, owner names, comments and GPS positions can be scanned
type ImageExtractor struct{}

// NewImageExtractor creates an EXIF extractor
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

func (e *ImageExtractor) Name() string { return "exif" }

func (e *ImageExtractor) Extensions() []string { return imageExtensions }

func (e *ImageExtractor) CanProcess(filePath string) bool {
	return hasExtension(filePath, imageExtensions)
}

// exifWalker collects every tag as a string
type exifWalker struct {
	tags map[string]string
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	value, err := tag.StringVal()
	if err != nil {
		value = tag.String()
	}
	w.tags[string(name)] = strings.TrimSpace(strings.TrimRight(value, "\x00"))
	return nil
}

func (e *ImageExtractor) Extract(filePath string) (*Content, error) {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	content := newContent(filePath, format, e.Name(), "")

	x, err := exif.Decode(f)
	if err != nil {
		// an image without EXIF has nothing to scan
		content.Metadata["exif"] = "none"
		return content, nil
	}

	walker := &exifWalker{tags: make(map[string]string)}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("error walking EXIF tags: %w", err)
	}

	if lat, long, err := x.LatLong(); err == nil {
		walker.tags["GPSLatitudeDecimal"] = fmt.Sprintf("%.6f", lat)
		walker.tags["GPSLongitudeDecimal"] = fmt.Sprintf("%.6f", long)
	}

	content.Metadata["exif_tags"] = fmt.Sprintf("%d", len(walker.tags))
	content.setText(renderFields(walker.tags))
	return content, nil
}
