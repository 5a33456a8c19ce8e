// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scoring turns entity counts into a bounded risk score and tier.
//
// The content score sums weight × 4 × (1 + ln(max(count, 1))) × confidence over entity
// types, is escalated by the strongest co-occurrence rule and capped at 100.
// Exposure then scales it into the final 0..100 score.
package scoring

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"

	"risklens/internal/parallel"
)

const weightScale = 4.0

// Tiers, highest first
const (
	TierCritical = "CRITICAL"
	TierHigh     = "HIGH"
	TierMedium   = "MEDIUM"
	TierLow      = "LOW"
	TierMinimal  = "MINIMAL"
)

var tierThresholds = []struct {
	min  int
	tier string
}{
	{80, TierCritical},
	{55, TierHigh},
	{31, TierMedium},
	{11, TierLow},
}

// Result explains a score
type Result struct {
	Score                  int      `json:"score" yaml:"score"`
	Tier                   string   `json:"tier" yaml:"tier"`
	ContentScore           float64  `json:"content_score" yaml:"content_score"`
	ExposureMultiplier     float64  `json:"exposure_multiplier" yaml:"exposure_multiplier"`
	CoOccurrenceMultiplier float64  `json:"co_occurrence_multiplier" yaml:"co_occurrence_multiplier"`
	TriggeredRules         []string `json:"triggered_rules" yaml:"triggered_rules"`
	Categories             []string `json:"categories" yaml:"categories"`
	Exposure               string   `json:"exposure" yaml:"exposure"`
}

// Request is one independent item of a batch
type Request struct {
	Counts     map[string]int
	Exposure   string
	Confidence float64
}

// Normalize upper-cases an entity type and resolves aliases
func Normalize(entityType string) string {
	upper := strings.ToUpper(entityType)
	if canonical, ok := aliases[upper]; ok {
		return canonical
	}
	return upper
}

// Weight returns the weight of an entity type, DefaultWeight when unlisted
func Weight(entityType string) int {
	if w, ok := weights[Normalize(entityType)]; ok {
		return w
	}
	return DefaultWeight
}

// Category returns the category of an entity type, CategoryUnknown when unlisted
func Category(entityType string) string {
	if c, ok := categories[Normalize(entityType)]; ok {
		return c
	}
	return CategoryUnknown
}

// ExposureMultiplier returns the multiplier for an exposure level; unknown levels get 1.0
func ExposureMultiplier(exposure string) float64 {
	if m, ok := exposureMultipliers[strings.ToUpper(exposure)]; ok {
		return m
	}
	return 1.0
}

// Exposures returns the recognised exposure levels, least exposed first
func Exposures() []string {
	out := make([]string, 0, len(exposureMultipliers))
	for e := range exposureMultipliers {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return exposureMultipliers[out[i]] < exposureMultipliers[out[j]]
	})
	return out
}

// Rules returns the co-occurrence rule table in evaluation order
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		out[i] = Rule{Name: r.Name, Requires: slices.Clone(r.Requires), Multiplier: r.Multiplier}
	}
	return out
}

// TierFor maps an integer score onto a tier
func TierFor(score int) string {
	for _, t := range tierThresholds {
		if score >= t.min {
			return t.tier
		}
	}
	return TierMinimal
}

// Score computes the risk of a set of entity counts. A count below one
// aggregates as a single occurrence.
func Score(counts map[string]int, exposure string, confidence float64) Result {
	exposure = strings.ToUpper(exposure)
	if len(counts) == 0 {
		return emptyResult(exposure)
	}

	// sorted keys keep the floating point sum identical across runs
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	base := 0.0
	for _, t := range types {
		aggregation := 1 + math.Log(float64(max(counts[t], 1)))
		base += float64(Weight(t)) * weightScale * aggregation * confidence
	}

	cats := presentCategories(types)
	co, triggered := coOccurrence(cats)
	content := math.Min(100, base*co)

	expMult := ExposureMultiplier(exposure)
	final := int(math.Round(math.Min(100, content*expMult)))

	return Result{
		Score:                  final,
		Tier:                   TierFor(final),
		ContentScore:           math.Round(content*10) / 10,
		ExposureMultiplier:     expMult,
		CoOccurrenceMultiplier: co,
		TriggeredRules:         triggered,
		Categories:             cats,
		Exposure:               exposure,
	}
}

func emptyResult(exposure string) Result {
	return Result{
		Tier:                   TierMinimal,
		ExposureMultiplier:     1.0,
		CoOccurrenceMultiplier: 1.0,
		TriggeredRules:         []string{},
		Categories:             []string{},
		Exposure:               exposure,
	}
}

func presentCategories(types []string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, t := range types {
		c := Category(t)
		if c == CategoryUnknown || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// coOccurrence returns the highest fired multiplier and every rule tied at it
func coOccurrence(cats []string) (float64, []string) {
	best := 1.0
	triggered := []string{}
	for _, r := range rules {
		fired := true
		for _, req := range r.Requires {
			if !slices.Contains(cats, req) {
				fired = false
				break
			}
		}
		if !fired {
			continue
		}
		switch {
		case r.Multiplier > best:
			best = r.Multiplier
			triggered = []string{r.Name}
		case r.Multiplier == best:
			triggered = append(triggered, r.Name)
		}
	}
	return best, triggered
}

// ScoreBatch scores independent requests on the worker pool, preserving order.
// A failing item yields the empty MINIMAL result.
func ScoreBatch(ctx context.Context, requests []Request) []Result {
	out, _ := parallel.Map(ctx, requests, func(r Request) Result {
		return Score(r.Counts, r.Exposure, r.Confidence)
	}, func(r Request) Result {
		return emptyResult(strings.ToUpper(r.Exposure))
	}, parallel.Options{Component: "scoring", Operation: "score_batch"})
	return out
}
