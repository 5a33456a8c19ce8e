// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risklens/internal/config"
	"risklens/internal/patterns"
)

// rawAt builds a raw match for the first occurrence of value in text
func rawAt(t *testing.T, text, value, entity string, confidence float64) patterns.RawMatch {
	t.Helper()
	start := strings.Index(text, value)
	require.GreaterOrEqual(t, start, 0, "value %q not in %q", value, text)
	return patterns.RawMatch{
		Start:      start,
		End:        start + len(value),
		Text:       value,
		EntityType: entity,
		Confidence: confidence,
	}
}

func TestContextRulesApply(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		value          string
		entity         string
		confidence     float64
		wantKept       bool
		wantConfidence float64
	}{
		{"ssn label boosts", "SSN: 123-45-6789", "123-45-6789", "SSN", 0.85, true, 0.95},
		{"social security number label", "social security number 123-45-6789", "123-45-6789", "US_SSN", 0.85, true, 0.95},
		{"boost caps at one", "SSN 123-45-6789", "123-45-6789", "SSN", 0.95, true, 1.0},
		{"order reference lowers", "Order #: 123-45-6789", "123-45-6789", "SSN", 0.85, true, 0.55},
		{"label on previous line is out of window", "SSN:\n123-45-6789", "123-45-6789", "SSN", 0.85, true, 0.85},
		{"label for another type is ignored", "SSN: 4532015112830366", "4532015112830366", "CREDIT_CARD", 0.9, true, 0.9},
		{"positive then negative", "call 5551234567 USD", "5551234567", "PHONE", 0.75, true, 0.65},
		{"version string lowers ip", "version 10.0.0.1", "10.0.0.1", "IP_ADDRESS", 0.85, true, 0.45},
		{"no context leaves confidence", "value 123-45-6789 here", "123-45-6789", "SSN", 0.85, true, 0.85},
		{"deny list drops placeholder email", "write to user@example.com.", "user@example.com", "EMAIL", 0.95, false, 0},
		{"deny list is case insensitive", "from USER@Example.com", "USER@Example.com", "EMAIL_ADDRESS", 0.95, false, 0},
		{"deny list drops loopback", "bind 127.0.0.1", "127.0.0.1", "IP_ADDRESS", 0.85, false, 0},
		{"real email kept", "mail jane.doe@example.com", "jane.doe@example.com", "EMAIL", 0.95, true, 0.95},
		{"mrn exclusion drops amounts", "MRN 440060.24", "440060.24", "MRN", 0.85, false, 0},
		{"mrn exclusion drops currency", "MRN $850", "$850", "MRN", 0.85, false, 0},
		{"mrn kept", "MRN 00123456", "00123456", "MRN", 0.85, true, 0.85},
	}

	rules := DefaultContextRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawAt(t, tt.text, tt.value, tt.entity, tt.confidence)
			got, outcome := rules.Apply(tt.text, []patterns.RawMatch{raw})

			if !tt.wantKept {
				assert.Empty(t, got)
				assert.Equal(t, 1, outcome.Suppressed)
				return
			}
			require.Len(t, got, 1)
			assert.InDelta(t, tt.wantConfidence, got[0].Confidence, 1e-9)
			assert.Equal(t, 0, outcome.Suppressed)
			if tt.wantConfidence != tt.confidence {
				assert.Equal(t, 1, outcome.Adjusted)
			} else {
				assert.Equal(t, 0, outcome.Adjusted)
			}
		})
	}
}

func TestContextRulesDropAtZeroConfidence(t *testing.T) {
	rules := NewContextRules([]HotwordRule{{
		Name:    "draft marker",
		Pattern: regexp.MustCompile(`(?i)draft\s*$`),
		Delta:   -1,
		Before:  10,
	}}, nil, nil)

	text := "draft 4242 final 4343"
	raws := []patterns.RawMatch{
		rawAt(t, text, "4242", "TICKET", 0.5),
		rawAt(t, text, "4343", "TICKET", 0.5),
	}
	got, outcome := rules.Apply(text, raws)

	require.Len(t, got, 1)
	assert.Equal(t, "4343", got[0].Text)
	assert.Equal(t, 1, outcome.Suppressed)
	assert.Equal(t, 0, outcome.Adjusted)
}

func TestContextRulesNilIsNoop(t *testing.T) {
	var rules *ContextRules
	text := "user@example.com"
	raws := []patterns.RawMatch{rawAt(t, text, text, "EMAIL", 0.9)}

	got, outcome := rules.Apply(text, raws)
	assert.Equal(t, raws, got)
	assert.Zero(t, outcome)

	lists, outcomes := rules.ApplyBatch(context.Background(), []string{text}, [][]patterns.RawMatch{raws})
	assert.Equal(t, [][]patterns.RawMatch{raws}, lists)
	assert.Len(t, outcomes, 1)
}

func TestContextRulesApplyBatchPreservesOrder(t *testing.T) {
	texts := []string{"SSN: 123-45-6789", "nothing", "user@example.com"}
	lists := [][]patterns.RawMatch{
		{rawAt(t, texts[0], "123-45-6789", "SSN", 0.85)},
		nil,
		{rawAt(t, texts[2], texts[2], "EMAIL", 0.9)},
	}

	got, outcomes := DefaultContextRules().ApplyBatch(context.Background(), texts, lists)
	require.Len(t, got, 3)
	require.Len(t, got[0], 1)
	assert.InDelta(t, 0.95, got[0][0].Confidence, 1e-9)
	assert.Empty(t, got[1])
	assert.Empty(t, got[2])
	assert.Equal(t, ContextOutcome{Adjusted: 1}, outcomes[0])
	assert.Equal(t, ContextOutcome{Suppressed: 1}, outcomes[2])
}

func TestContextRulesFromConfig(t *testing.T) {
	rules, err := ContextRulesFromConfig(config.ContextConfig{Disabled: true})
	require.NoError(t, err)
	assert.Nil(t, rules)

	rules, err = ContextRulesFromConfig(config.ContextConfig{
		Hotwords: []config.HotwordSpec{{
			Name:        "badge label",
			EntityTypes: []string{"EMPLOYEE_ID"},
			Pattern:     `(?i)badge\s*$`,
			Delta:       0.1,
			Before:      20,
		}},
		Deny: map[string][]string{"EMPLOYEE_ID": {"EMP-000000"}},
	})
	require.NoError(t, err)

	text := "badge EMP-123456 and EMP-000000"
	got, outcome := rules.Apply(text, []patterns.RawMatch{
		rawAt(t, text, "EMP-123456", "EMPLOYEE_ID", 0.8),
		rawAt(t, text, "EMP-000000", "EMPLOYEE_ID", 0.8),
	})
	require.Len(t, got, 1)
	assert.InDelta(t, 0.9, got[0].Confidence, 1e-9)
	assert.Equal(t, ContextOutcome{Suppressed: 1, Adjusted: 1}, outcome)

	// built-in rules stay active alongside configured ones
	text = "user@example.com"
	got, _ = rules.Apply(text, []patterns.RawMatch{rawAt(t, text, text, "EMAIL", 0.9)})
	assert.Empty(t, got)

	_, err = ContextRulesFromConfig(config.ContextConfig{Hotwords: []config.HotwordSpec{{Pattern: `(`, Delta: 0.1, Before: 5}}})
	assert.Error(t, err)
}

func TestScanAppliesContextBeforeOverlapResolution(t *testing.T) {
	text := "Order #: 123-45-6789, notify user@example.com"

	r := builtinScanner(t, nil).ScanText(context.Background(), "inline", text).Results[0]
	require.Len(t, r.Findings, 1)
	assert.Equal(t, "SSN", r.Findings[0].Type)
	// 0.85 base + 0.10 gate - 0.30 order reference
	assert.InDelta(t, 0.65, r.Findings[0].Confidence, 1e-9)
	assert.Equal(t, 2, r.Candidates)
	assert.Equal(t, 1, r.Suppressed)
	assert.Equal(t, 1, r.Adjusted)

	// the lowered confidence is what the minimum confidence filter sees
	r = builtinScanner(t, func(c *ScanConfig) { c.MinConfidence = 0.7 }).ScanText(context.Background(), "inline", text).Results[0]
	assert.Empty(t, r.Findings)
	assert.Equal(t, 1, r.Filtered)

	r = builtinScanner(t, func(c *ScanConfig) { c.DisableContext = true }).ScanText(context.Background(), "inline", text).Results[0]
	require.Len(t, r.Findings, 2)
	assert.Equal(t, 0, r.Suppressed)
}

func TestBuildScanConfigContext(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	sc := BuildScanConfig(cfg, Overrides{}, nil)
	assert.NotNil(t, sc.ContextRules)
	assert.False(t, sc.DisableContext)

	sc = BuildScanConfig(cfg, Overrides{NoContext: true}, nil)
	assert.True(t, sc.DisableContext)

	cfg.Context.Disabled = true
	sc = BuildScanConfig(cfg, Overrides{}, nil)
	assert.Nil(t, sc.ContextRules)
	assert.True(t, sc.DisableContext)
}
