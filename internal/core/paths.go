// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPaths turns files and directories into the list of files to scan.
// Directories contribute their regular files, descending into subdirectories
// only when recursive is set; hidden directories are skipped. A path that
// cannot be read is kept so that its error shows up in the scan results.
func ExpandPaths(inputs []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		root := filepath.Clean(input)

		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable entries are reported by the scan itself
				add(path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path == root {
					return nil
				}
				if !recursive || strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error accessing directory %s: %w", root, err)
		}
	}

	return files, nil
}
