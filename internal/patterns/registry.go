// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"slices"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type registryEntry struct {
	once    sync.Once
	specs   []PatternSpec
	catalog *Catalog
}

// registry holds one entry per distinct pattern set, bucketed by fingerprint
var registry = struct {
	sync.Mutex
	entries map[uint64][]*registryEntry
}{entries: make(map[uint64][]*registryEntry)}

// Compile returns the shared catalog for specs, compiling it at most once per
// distinct pattern set. Concurrent callers with the same set block until the
// single compilation finishes. Options only take effect on the first call.
func Compile(specs []PatternSpec, opts ...Option) *Catalog {
	key := Fingerprint(specs)

	registry.Lock()
	var entry *registryEntry
	for _, e := range registry.entries[key] {
		if slices.Equal(e.specs, specs) {
			entry = e
			break
		}
	}
	if entry == nil {
		entry = &registryEntry{specs: slices.Clone(specs)}
		registry.entries[key] = append(registry.entries[key], entry)
	}
	registry.Unlock()

	entry.once.Do(func() {
		entry.catalog = NewCatalog(entry.specs, opts...)
	})
	return entry.catalog
}

// Fingerprint hashes a pattern set; equal sets always hash equal
func Fingerprint(specs []PatternSpec) uint64 {
	d := xxhash.New()
	sep := []byte{0}
	for _, s := range specs {
		_, _ = d.WriteString(s.Name)
		_, _ = d.Write(sep)
		_, _ = d.WriteString(s.Regex)
		_, _ = d.Write(sep)
		_, _ = d.WriteString(s.EntityType)
		_, _ = d.Write(sep)
		_, _ = d.WriteString(strconv.FormatFloat(s.Confidence, 'g', -1, 64))
		_, _ = d.Write(sep)
		_, _ = d.WriteString(strconv.Itoa(s.Group))
		_, _ = d.Write(sep)
		_, _ = d.WriteString(s.Validator)
		_, _ = d.Write([]byte{1})
	}
	return d.Sum64()
}
