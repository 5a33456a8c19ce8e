// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"risklens/internal/detector"
	"risklens/internal/extract"
	"risklens/internal/observability"
	"risklens/internal/parallel"
	"risklens/internal/patterns"
	"risklens/internal/resilience"
	"risklens/internal/scoring"
	"risklens/internal/spans"
)

// ScanConfig holds configuration for scanning operations.
type ScanConfig struct {
	Patterns []patterns.PatternSpec

	// Exposure and Confidence feed the risk score. Confidence <= 0 scores with
	// the mean confidence of the surviving findings.
	Exposure   string
	Confidence float64

	// MinConfidence drops candidates below it before overlap resolution
	MinConfidence float64

	// Checks limits scanning to these entity types; empty means all
	Checks []string

	// ContextRules reviews candidates before filtering and overlap resolution.
	// Nil uses DefaultContextRules unless DisableContext is set.
	ContextRules   *ContextRules
	DisableContext bool

	Workers      int
	ContextChars int
	Recursive    bool

	Observer *observability.StandardObserver
}

// Input is one named text to scan
type Input struct {
	Source string
	Text   string
}

// Result holds the outcome for one input
type Result struct {
	Source     string             `json:"source" yaml:"source"`
	Extractor  string             `json:"extractor,omitempty" yaml:"extractor,omitempty"`
	PageCount  int                `json:"page_count,omitempty" yaml:"page_count,omitempty"`
	Findings   []detector.Finding `json:"findings" yaml:"findings"`
	Counts     map[string]int     `json:"counts" yaml:"counts"`
	Risk       scoring.Result     `json:"risk" yaml:"risk"`
	Candidates int                `json:"candidates" yaml:"candidates"`
	Suppressed int                `json:"context_suppressed" yaml:"context_suppressed"`
	Adjusted   int                `json:"context_adjusted" yaml:"context_adjusted"`
	Filtered   int                `json:"filtered" yaml:"filtered"`
	Overlaps   int                `json:"overlaps_removed" yaml:"overlaps_removed"`
	Error      string             `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType  string             `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	Err error `json:"-" yaml:"-"`
}

// Failed reports whether the input could not be scanned
func (r Result) Failed() bool {
	return r.Err != nil
}

// Summary aggregates a report
type Summary struct {
	Sources      int            `json:"sources" yaml:"sources"`
	Failed       int            `json:"failed" yaml:"failed"`
	Findings     int            `json:"findings" yaml:"findings"`
	ByType       map[string]int `json:"by_type" yaml:"by_type"`
	HighestScore int            `json:"highest_score" yaml:"highest_score"`
	HighestTier  string         `json:"highest_tier" yaml:"highest_tier"`
}

// PatternStats describes the compiled catalog
type PatternStats struct {
	Total    int      `json:"total" yaml:"total"`
	Compiled int      `json:"compiled" yaml:"compiled"`
	Failed   int      `json:"failed" yaml:"failed"`
	Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Report holds the results of a scanning operation.
type Report struct {
	Results  []Result       `json:"results" yaml:"results"`
	Summary  Summary        `json:"summary" yaml:"summary"`
	Overall  scoring.Result `json:"overall" yaml:"overall"`
	Patterns PatternStats   `json:"patterns" yaml:"patterns"`
	Duration time.Duration  `json:"duration_ns" yaml:"duration_ns"`
}

// Scanner runs the match, validate, dedup, count and score pipeline
type Scanner struct {
	cfg        ScanConfig
	catalog    *patterns.Catalog
	extractors *extract.Manager
	contexts   *detector.ContextExtractor
	rules      *ContextRules
	checks     map[string]bool
	observer   *observability.StandardObserver
}

// NewScanner compiles the catalog through the shared registry
func NewScanner(cfg ScanConfig) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = parallel.DefaultWorkers()
	}
	rules := cfg.ContextRules
	if cfg.DisableContext {
		rules = nil
	} else if rules == nil {
		rules = DefaultContextRules()
	}
	ce := detector.NewContextExtractor()
	if cfg.ContextChars > 0 {
		ce.WithContextChars(cfg.ContextChars)
	}
	return &Scanner{
		cfg:        cfg,
		catalog:    patterns.Compile(cfg.Patterns, patterns.WithObserver(cfg.Observer)),
		extractors: extract.NewManager(cfg.Observer),
		contexts:   ce,
		rules:      rules,
		checks:     ParseChecksToRun(cfg.Checks),
		observer:   cfg.Observer,
	}
}

// Catalog returns the compiled catalog
func (s *Scanner) Catalog() *patterns.Catalog {
	return s.catalog
}

// Extractors returns the file extraction manager
func (s *Scanner) Extractors() *extract.Manager {
	return s.extractors
}

// ScanText scans a single text
func (s *Scanner) ScanText(ctx context.Context, source, text string) *Report {
	start := time.Now()
	results := s.ScanTexts(ctx, []Input{{Source: source, Text: text}})
	return s.buildReport(results, time.Since(start))
}

// ScanTexts scans many texts; result i belongs to inputs[i]. Every stage runs
// as a batch on the worker pool.
func (s *Scanner) ScanTexts(ctx context.Context, inputs []Input) []Result {
	results := make([]Result, len(inputs))
	if len(inputs) == 0 {
		return results
	}

	step := s.observer.Debug().StartStep("core", "scan_texts", fmt.Sprintf("%d inputs", len(inputs)))

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Text
	}
	rawLists := s.catalog.FindMatchesBatch(ctx, texts)
	reviewed, outcomes := s.rules.ApplyBatch(ctx, texts, rawLists)

	groups := make([][]spans.Span, len(inputs))
	kept := make([][]patterns.RawMatch, len(inputs))
	for i, raws := range reviewed {
		results[i].Source = inputs[i].Source
		results[i].Candidates = len(rawLists[i])
		results[i].Suppressed = outcomes[i].Suppressed
		results[i].Adjusted = outcomes[i].Adjusted
		kept[i] = s.filter(raws)
		results[i].Filtered = len(raws) - len(kept[i])
		groups[i] = FromMatches(kept[i])
	}

	survivors := spans.DeduplicateBatch(ctx, groups)

	requests := make([]scoring.Request, len(inputs))
	for i := range inputs {
		final := make([]patterns.RawMatch, 0, len(survivors[i]))
		for _, idx := range survivors[i] {
			final = append(final, kept[i][idx])
		}
		results[i].Overlaps = len(kept[i]) - len(final)
		results[i].Findings = detector.FromRaw(inputs[i].Text, final, inputs[i].Source, s.contexts)
		results[i].Counts = CountEntities(final)
		requests[i] = scoring.Request{
			Counts:     results[i].Counts,
			Exposure:   s.exposure(),
			Confidence: s.scoringConfidence(final),
		}
		s.observer.Debug().LogDetail("core", fmt.Sprintf("%s: %d candidates, %d kept",
			inputs[i].Source, results[i].Candidates, len(final)))
	}

	for i, risk := range scoring.ScoreBatch(ctx, requests) {
		results[i].Risk = risk
	}

	step(true, "")
	return results
}

// ScanFiles extracts and scans files. A file that cannot be read is reported in
// its result and does not stop the others; only cancellation returns an error.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()

	files, err := ExpandPaths(paths, s.cfg.Recursive)
	if err != nil {
		return nil, err
	}

	contents := make([]*extract.Content, len(files))
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, file := range files {
		results[i].Source = file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := s.extractors.Extract(gctx, file)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				results[i].setError(err)
				s.observer.LogOperation(observability.StandardObservabilityData{
					Component: "core",
					Operation: "extract",
					Target:    file,
					Success:   false,
					Error:     err.Error(),
				})
				return nil
			}
			contents[i] = content
			return nil
		})
	}
	waitErr := g.Wait()

	var inputs []Input
	var slots []int
	for i, c := range contents {
		if c != nil {
			inputs = append(inputs, Input{Source: files[i], Text: c.Text})
			slots = append(slots, i)
		} else if waitErr != nil && results[i].Err == nil {
			results[i].setError(resilience.ClassifyError(waitErr))
		}
	}

	for k, r := range s.ScanTexts(ctx, inputs) {
		i := slots[k]
		r.Extractor = contents[i].Extractor
		r.PageCount = contents[i].PageCount
		results[i] = r
	}

	report := s.buildReport(results, time.Since(start))
	if waitErr != nil {
		return report, waitErr
	}
	return report, nil
}

func (r *Result) setError(err error) {
	r.Err = err
	r.Error = err.Error()
	r.ErrorType = resilience.TypeOf(err).String()
	r.Counts = map[string]int{}
	r.Risk = scoring.Score(nil, "", 0)
}

// filter applies the entity type and minimum confidence settings
func (s *Scanner) filter(raws []patterns.RawMatch) []patterns.RawMatch {
	out := make([]patterns.RawMatch, 0, len(raws))
	for _, m := range raws {
		if s.checks != nil && !s.checks[scoring.Normalize(m.EntityType)] {
			continue
		}
		if m.Confidence < s.cfg.MinConfidence {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *Scanner) exposure() string {
	if s.cfg.Exposure == "" {
		return "PRIVATE"
	}
	return s.cfg.Exposure
}

func (s *Scanner) scoringConfidence(final []patterns.RawMatch) float64 {
	if s.cfg.Confidence > 0 {
		return s.cfg.Confidence
	}
	if len(final) == 0 {
		return 0
	}
	total := 0.0
	for _, m := range final {
		total += m.Confidence
	}
	return total / float64(len(final))
}

func (s *Scanner) buildReport(results []Result, elapsed time.Duration) *Report {
	report := &Report{
		Results:  results,
		Duration: elapsed,
		Patterns: PatternStats{
			Total:    s.catalog.Total(),
			Compiled: s.catalog.Compiled(),
			Failed:   s.catalog.Failed(),
		},
	}
	for _, f := range s.catalog.Failures() {
		report.Patterns.Failures = append(report.Patterns.Failures, f.Err.Error())
	}

	summary := Summary{Sources: len(results), ByType: map[string]int{}, HighestTier: scoring.TierMinimal}
	var all []patterns.RawMatch
	for _, r := range results {
		if r.Failed() {
			summary.Failed++
			continue
		}
		summary.Findings += len(r.Findings)
		for t, n := range r.Counts {
			summary.ByType[t] += n
		}
		if r.Risk.Score > summary.HighestScore {
			summary.HighestScore = r.Risk.Score
			summary.HighestTier = r.Risk.Tier
		}
		for _, f := range r.Findings {
			all = append(all, patterns.RawMatch{EntityType: f.Type, Confidence: f.Confidence})
		}
	}
	report.Summary = summary
	report.Overall = scoring.Score(summary.ByType, s.exposure(), s.scoringConfidence(all))
	return report
}

// FromMatches converts raw matches into spans, index for index
func FromMatches(raws []patterns.RawMatch) []spans.Span {
	out := make([]spans.Span, len(raws))
	for i, m := range raws {
		out[i] = spans.Span{Start: m.Start, End: m.End, EntityType: m.EntityType, Confidence: m.Confidence}
	}
	return out
}

// CountEntities counts matches per normalized entity type
func CountEntities(raws []patterns.RawMatch) map[string]int {
	counts := make(map[string]int)
	for _, m := range raws {
		counts[scoring.Normalize(m.EntityType)]++
	}
	return counts
}

// ParseChecksToRun converts a slice of entity types into an enabled-checks map.
// An empty slice or ["all"] returns nil, which enables every type.
func ParseChecksToRun(checks []string) map[string]bool {
	var result map[string]bool
	for _, check := range checks {
		checkStr := strings.TrimSpace(check)
		if checkStr == "" {
			continue
		}
		if strings.EqualFold(checkStr, "all") {
			return nil
		}
		if result == nil {
			result = make(map[string]bool)
		}
		result[scoring.Normalize(checkStr)] = true
	}
	return result
}

// SortedTypes returns the keys of a count map, most frequent first
func SortedTypes(counts map[string]int) []string {
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	return types
}
