// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns compiles a catalog of regular expressions once and finds
// candidate entity matches in text.
package patterns

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"go.uber.org/zap"

	"risklens/internal/observability"
	"risklens/internal/parallel"
	"risklens/internal/resilience"
	"risklens/internal/validators"
)

// compilations counts NewCatalog calls; tests use it to observe exactly-once compilation
var compilations atomic.Int64

// Catalog is an immutable compiled pattern set, safe for concurrent use.
// specs and regexes share one index space: the pattern id.
type Catalog struct {
	specs    []PatternSpec
	regexes  []*regexp.Regexp
	failures []CompileFailure
	total    int

	// prefilter finds required literals; owners maps a trie pattern index to pattern ids
	prefilter     *ahocorasick.Trie
	owners        [][]int
	unconstrained []int

	observer *observability.StandardObserver
}

// Option configures catalog construction
type Option func(*Catalog)

// WithObserver attaches an observer used for compile and batch timing
func WithObserver(observer *observability.StandardObserver) Option {
	return func(c *Catalog) {
		c.observer = observer
	}
}

// NewCatalog compiles specs without consulting the shared registry. Entries
// that fail to compile are dropped, counted and never receive a pattern id.
func NewCatalog(specs []PatternSpec, opts ...Option) *Catalog {
	compilations.Add(1)

	c := &Catalog{total: len(specs)}
	for _, opt := range opts {
		opt(c)
	}
	finishTiming := c.observer.StartTiming("patterns", "compile", "catalog")

	literalIndex := make(map[string]int)
	var literals []string

	for i, spec := range specs {
		if spec.Name == "" {
			spec.Name = spec.EntityType
		}
		re, err := compileSpec(spec)
		if err != nil {
			c.failures = append(c.failures, CompileFailure{Index: i, Name: spec.DisplayName(), Err: err})
			c.observer.Logger().Warn("pattern skipped",
				zap.String("pattern", spec.DisplayName()),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		id := len(c.specs)
		c.specs = append(c.specs, spec)
		c.regexes = append(c.regexes, re)

		lits, ok := requiredLiterals(spec.Regex)
		if !ok {
			c.unconstrained = append(c.unconstrained, id)
			continue
		}
		for _, lit := range lits {
			k, seen := literalIndex[lit]
			if !seen {
				k = len(literals)
				literalIndex[lit] = k
				literals = append(literals, lit)
				c.owners = append(c.owners, nil)
			}
			c.owners[k] = append(c.owners[k], id)
		}
	}

	if len(literals) > 0 {
		c.prefilter = ahocorasick.NewTrieBuilder().AddStrings(literals).Build()
	}

	finishTiming(len(c.failures) == 0, map[string]interface{}{
		"compiled":      len(c.specs),
		"failed":        len(c.failures),
		"literals":      len(literals),
		"unconstrained": len(c.unconstrained),
	})
	return c
}

func compileSpec(spec PatternSpec) (*regexp.Regexp, error) {
	if strings.TrimSpace(spec.EntityType) == "" {
		return nil, resilience.NewCompileError(spec.DisplayName(), errors.New("entity_type is required"))
	}
	if spec.Confidence < 0 || spec.Confidence > 1 {
		return nil, resilience.NewCompileError(spec.DisplayName(), fmt.Errorf("confidence %v outside [0,1]", spec.Confidence))
	}
	re, err := regexp.Compile(spec.Regex)
	if err != nil {
		return nil, resilience.NewCompileError(spec.DisplayName(), err)
	}
	if spec.Group < 0 || spec.Group > re.NumSubexp() {
		return nil, resilience.NewCompileError(spec.DisplayName(),
			fmt.Errorf("capture group %d out of range (expression has %d)", spec.Group, re.NumSubexp()))
	}
	return re, nil
}

// Len returns the number of compiled patterns
func (c *Catalog) Len() int { return len(c.specs) }

// Compiled returns how many catalog entries compiled
func (c *Catalog) Compiled() int { return len(c.specs) }

// Failed returns how many catalog entries were dropped
func (c *Catalog) Failed() int { return len(c.failures) }

// Total returns the size of the input catalog
func (c *Catalog) Total() int { return c.total }

// Failures returns the dropped entries in input order
func (c *Catalog) Failures() []CompileFailure {
	return append([]CompileFailure(nil), c.failures...)
}

// Names returns pattern names indexed by pattern id
func (c *Catalog) Names() []string {
	names := make([]string, len(c.specs))
	for i, s := range c.specs {
		names[i] = s.Name
	}
	return names
}

// Spec returns the compiled spec with the given pattern id
func (c *Catalog) Spec(id int) (PatternSpec, bool) {
	if id < 0 || id >= len(c.specs) {
		return PatternSpec{}, false
	}
	return c.specs[id], true
}

// MightContain is a cheap necessary check: false guarantees FindMatches returns nothing.
func (c *Catalog) MightContain(text string) bool {
	if len(c.specs) == 0 {
		return false
	}
	if len(c.unconstrained) > 0 {
		return true
	}
	return c.prefilter.MatchFirstString(foldForPrefilter(text)) != nil
}

// candidates returns the ids whose required literals occur in text, in id order
func (c *Catalog) candidates(text string) []int {
	if len(c.unconstrained) == len(c.specs) {
		return c.unconstrained
	}

	marked := make([]bool, len(c.specs))
	for _, id := range c.unconstrained {
		marked[id] = true
	}
	if c.prefilter != nil {
		for _, m := range c.prefilter.MatchString(foldForPrefilter(text)) {
			for _, id := range c.owners[m.Pattern()] {
				marked[id] = true
			}
		}
	}

	ids := make([]int, 0, len(c.specs))
	for id, ok := range marked {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// FindMatches returns every accepted candidate in text ordered by start, end and pattern id
func (c *Catalog) FindMatches(text string) []RawMatch {
	if text == "" || len(c.specs) == 0 {
		return nil
	}

	var out []RawMatch
	for _, id := range c.candidates(text) {
		re := c.regexes[id]
		if !re.MatchString(text) {
			continue
		}
		out = c.extract(id, re, text, out)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}
		return out[i].PatternID < out[j].PatternID
	})
	return out
}

func (c *Catalog) extract(id int, re *regexp.Regexp, text string, out []RawMatch) []RawMatch {
	spec := c.specs[id]

	var spans [][]int
	if spec.Group == 0 {
		spans = re.FindAllStringIndex(text, -1)
	} else {
		spans = re.FindAllStringSubmatchIndex(text, -1)
	}

	for _, loc := range spans {
		start, end := loc[2*spec.Group], loc[2*spec.Group+1]
		if start < 0 || end <= start {
			// group did not participate or matched nothing
			continue
		}
		matched := text[start:end]
		if strings.TrimSpace(matched) == "" {
			continue
		}

		confidence := spec.Confidence
		if spec.Validator != "" {
			outcome := validators.Gate(spec.Validator, matched)
			if !outcome.Accepted {
				continue
			}
			confidence += outcome.ConfidenceDelta
			if confidence > 1.0 {
				confidence = 1.0
			}
		}

		out = append(out, RawMatch{
			PatternID:   id,
			PatternName: spec.Name,
			Start:       start,
			End:         end,
			Text:        matched,
			EntityType:  spec.EntityType,
			Confidence:  confidence,
			Validator:   spec.Validator,
		})
	}
	return out
}

// FindMatchesBatch matches every text on the worker pool. Output i belongs to texts[i];
// an item that fails yields an empty list.
func (c *Catalog) FindMatchesBatch(ctx context.Context, texts []string) [][]RawMatch {
	out, _ := parallel.Map(ctx, texts, c.FindMatches, func(string) []RawMatch {
		return nil
	}, parallel.Options{Observer: c.observer, Component: "patterns", Operation: "find_matches_batch"})
	return out
}
