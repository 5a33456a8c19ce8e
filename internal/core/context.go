// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"risklens/internal/config"
	"risklens/internal/detector"
	"risklens/internal/parallel"
	"risklens/internal/patterns"
	"risklens/internal/scoring"
)

// HotwordRule moves a candidate's confidence by Delta when Pattern matches the
// Before bytes ahead of it or the After bytes behind it, on the same line.
// Patterns looking backwards should be anchored with $, forwards with ^.
type HotwordRule struct {
	Name        string
	EntityTypes []string // empty applies to every type
	Pattern     *regexp.Regexp
	Delta       float64
	Before      int
	After       int
}

func (h HotwordRule) appliesTo(entity string) bool {
	if len(h.EntityTypes) == 0 {
		return true
	}
	for _, t := range h.EntityTypes {
		if scoring.Normalize(t) == entity {
			return true
		}
	}
	return false
}

func (h HotwordRule) matches(window detector.ContextInfo) bool {
	if h.Before > 0 && h.Pattern.MatchString(lastBytes(window.BeforeText, h.Before)) {
		return true
	}
	return h.After > 0 && h.Pattern.MatchString(firstBytes(window.AfterText, h.After))
}

// ContextOutcome counts what the context step did to one input
type ContextOutcome struct {
	Suppressed int // denied, excluded or driven to zero confidence
	Adjusted   int
}

// ContextRules reviews raw matches against their surroundings: deny lists and
// exclusion patterns drop known false positives, hotwords raise or lower
// confidence. A nil *ContextRules leaves matches untouched.
type ContextRules struct {
	hotwords []HotwordRule
	deny     map[string]map[string]bool
	exclude  map[string][]*regexp.Regexp
	window   int
}

// NewContextRules builds a rule set. Deny and exclude keys are entity types.
func NewContextRules(hotwords []HotwordRule, deny map[string][]string, exclude map[string][]*regexp.Regexp) *ContextRules {
	r := &ContextRules{
		deny:    make(map[string]map[string]bool),
		exclude: make(map[string][]*regexp.Regexp),
	}

	// positives first so that a cap at 1.0 is reached before penalties apply
	for _, positive := range []bool{true, false} {
		for _, h := range hotwords {
			if (h.Delta > 0) == positive && h.Pattern != nil {
				r.hotwords = append(r.hotwords, h)
				r.window = max(r.window, h.Before, h.After)
			}
		}
	}
	for entity, values := range deny {
		r.addDeny(entity, values)
	}
	for entity, res := range exclude {
		key := scoring.Normalize(entity)
		r.exclude[key] = append(r.exclude[key], res...)
	}
	return r
}

func (r *ContextRules) addDeny(entity string, values []string) {
	key := scoring.Normalize(entity)
	if r.deny[key] == nil {
		r.deny[key] = make(map[string]bool)
	}
	for _, v := range values {
		r.deny[key][normalizeDenyValue(v)] = true
	}
}

// DefaultContextRules returns the built-in rule set
func DefaultContextRules() *ContextRules {
	return NewContextRules(defaultHotwords, defaultDeny, defaultExclusions)
}

// ContextRulesFromConfig returns the built-in rules extended by cfg, or nil when
// the context step is disabled. Hotwords are expected to be validated already.
func ContextRulesFromConfig(cfg config.ContextConfig) (*ContextRules, error) {
	if cfg.Disabled {
		return nil, nil
	}

	hotwords := append([]HotwordRule(nil), defaultHotwords...)
	for _, h := range cfg.Hotwords {
		re, err := regexp.Compile(h.Pattern)
		if err != nil {
			return nil, fmt.Errorf("context hotword %s: %w", h.Name, err)
		}
		hotwords = append(hotwords, HotwordRule{
			Name:        h.Name,
			EntityTypes: h.EntityTypes,
			Pattern:     re,
			Delta:       h.Delta,
			Before:      h.Before,
			After:       h.After,
		})
	}

	r := NewContextRules(hotwords, defaultDeny, defaultExclusions)
	for entity, values := range cfg.Deny {
		r.addDeny(entity, values)
	}
	return r, nil
}

// Apply reviews the matches of one text and returns the survivors in input order
func (r *ContextRules) Apply(text string, raws []patterns.RawMatch) ([]patterns.RawMatch, ContextOutcome) {
	var outcome ContextOutcome
	if r == nil || len(raws) == 0 {
		return raws, outcome
	}

	index := detector.NewLineIndex(text)
	ce := detector.NewContextExtractor().WithContextChars(r.window)

	out := make([]patterns.RawMatch, 0, len(raws))
	for _, m := range raws {
		entity := scoring.Normalize(m.EntityType)
		if r.rejects(entity, m.Text) {
			outcome.Suppressed++
			continue
		}

		confidence := m.Confidence
		if len(r.hotwords) > 0 {
			window := ce.ExtractContext(text, index, m.Start, m.End)
			for _, h := range r.hotwords {
				if h.appliesTo(entity) && h.matches(window) {
					confidence = min(1.0, max(0.0, confidence+h.Delta))
				}
			}
		}

		if confidence <= 0 {
			outcome.Suppressed++
			continue
		}
		if confidence != m.Confidence {
			outcome.Adjusted++
			m.Confidence = confidence
		}
		out = append(out, m)
	}
	return out, outcome
}

// ApplyBatch runs Apply over independent texts on the worker pool. An input
// whose review fails keeps its matches unchanged.
func (r *ContextRules) ApplyBatch(ctx context.Context, texts []string, rawLists [][]patterns.RawMatch) ([][]patterns.RawMatch, []ContextOutcome) {
	if r == nil {
		return rawLists, make([]ContextOutcome, len(rawLists))
	}

	type reviewed struct {
		matches []patterns.RawMatch
		outcome ContextOutcome
	}

	items := make([]int, len(texts))
	for i := range items {
		items[i] = i
	}
	results, _ := parallel.Map(ctx, items, func(i int) reviewed {
		m, o := r.Apply(texts[i], rawLists[i])
		return reviewed{m, o}
	}, func(i int) reviewed {
		return reviewed{matches: rawLists[i]}
	}, parallel.Options{Component: "core", Operation: "context_batch"})

	out := make([][]patterns.RawMatch, len(results))
	outcomes := make([]ContextOutcome, len(results))
	for i, res := range results {
		out[i] = res.matches
		outcomes[i] = res.outcome
	}
	return out, outcomes
}

func (r *ContextRules) rejects(entity, text string) bool {
	if r.deny[entity][normalizeDenyValue(text)] {
		return true
	}
	trimmed := strings.TrimSpace(text)
	for _, re := range r.exclude[entity] {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func normalizeDenyValue(s string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(s)), ".,;:!?")
}

// lastBytes returns at most n trailing bytes of s, starting on a rune boundary
func lastBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

// firstBytes returns at most n leading bytes of s, ending on a rune boundary
func firstBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

var numericIdentifiers = []string{"SSN", "CREDIT_CARD", "PHONE", "NPI", "ACCOUNT_NUMBER", "ROUTING_NUMBER"}

var defaultHotwords = []HotwordRule{
	{
		Name:        "ssn label",
		EntityTypes: []string{"SSN"},
		Pattern:     regexp.MustCompile(`(?i)\b(?:ssn|ss#|social\s+security(?:\s+(?:no\.?|number|#))?)\s*[:#]?\s*$`),
		Delta:       0.10,
		Before:      30,
	},
	{
		Name:        "card label",
		EntityTypes: []string{"CREDIT_CARD"},
		Pattern:     regexp.MustCompile(`(?i)\b(?:card|visa|mastercard|amex|discover|cc|pan)(?:\s+(?:no\.?|number|#))?\s*[:#]?\s*$`),
		Delta:       0.10,
		Before:      30,
	},
	{
		Name:        "phone label",
		EntityTypes: []string{"PHONE"},
		Pattern:     regexp.MustCompile(`(?i)\b(?:phone|tel|mobile|cell|fax|call)\.?\s*[:#]?\s*$`),
		Delta:       0.15,
		Before:      20,
	},
	{
		Name:        "provider label",
		EntityTypes: []string{"NPI"},
		Pattern:     regexp.MustCompile(`(?i)\b(?:npi|provider(?:\s+id)?)\s*[:#]?\s*$`),
		Delta:       0.15,
		Before:      25,
	},
	{
		Name:        "business reference",
		EntityTypes: numericIdentifiers,
		Pattern:     regexp.MustCompile(`(?i)\b(?:order|invoice|inv|ref(?:erence)?|tracking|serial|part|sku|ticket|case)\s*(?:no\.?|number|#)?\s*[:#]?\s*$`),
		Delta:       -0.30,
		Before:      30,
	},
	{
		Name:        "version string",
		EntityTypes: []string{"IP_ADDRESS"},
		Pattern:     regexp.MustCompile(`(?i)\b(?:version|ver|v)\.?\s*$`),
		Delta:       -0.40,
		Before:      15,
	},
	{
		Name:        "currency amount",
		EntityTypes: numericIdentifiers,
		Pattern:     regexp.MustCompile(`(?i)^\s*(?:usd|eur|gbp|dollars?|euros?)\b`),
		Delta:       -0.25,
		After:       15,
	},
}

var defaultDeny = map[string][]string{
	"NAME": {
		"admin", "user", "customer", "client", "patient", "member", "manager", "director",
		"agent", "officer", "employee", "staff", "null", "undefined", "none", "true", "false",
		"default", "dear", "mr", "mrs", "ms", "miss", "dr", "prof",
	},
	"USERNAME": {
		"admin", "user", "system", "root", "guest", "test", "login", "password", "name",
	},
	"EMAIL": {
		"user@example.com", "name@example.com", "email@example.com", "your.name@example.com",
		"name@domain.com", "email@domain.com",
	},
	"IP_ADDRESS": {"0.0.0.0", "255.255.255.255", "127.0.0.1"},
}

var defaultExclusions = map[string][]*regexp.Regexp{
	"MRN": {
		regexp.MustCompile(`^\d+\.\d{2}$`),
		regexp.MustCompile(`^[$€£¥₹]\d`),
		regexp.MustCompile(`^[A-Z]{1,3}[$€£¥₹]\d`),
		regexp.MustCompile(`(?i)(?:Chrome|Safari|Firefox|AppleWebKit|Gecko|Mozilla|MSIE|Trident)[/\d.]`),
		regexp.MustCompile(`^[a-zA-Z0-9]{30,}$`),
	},
}
