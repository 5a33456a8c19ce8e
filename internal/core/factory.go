// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"risklens/internal/config"
	"risklens/internal/observability"
)

// Overrides carries command line values; zero values keep the configuration
type Overrides struct {
	Exposure      string
	Confidence    float64
	MinConfidence float64
	Checks        []string
	Workers       int
	Recursive     bool
	NoContext     bool
}

// BuildScanConfig merges configuration defaults (with any profile already
// applied) and command line overrides into a ScanConfig
func BuildScanConfig(cfg *config.Config, overrides Overrides, observer *observability.StandardObserver) ScanConfig {
	if cfg == nil {
		cfg, _ = config.LoadConfig("")
	}
	d := cfg.Defaults

	sc := ScanConfig{
		Patterns:      cfg.Catalog(),
		Exposure:      d.Exposure,
		Confidence:    d.Confidence,
		MinConfidence: d.MinConfidence,
		Workers:       d.Workers,
		Checks:        overrides.Checks,
		Recursive:     overrides.Recursive,
		Observer:      observer,
	}

	if overrides.Exposure != "" {
		sc.Exposure = overrides.Exposure
	}
	if overrides.Confidence > 0 {
		sc.Confidence = overrides.Confidence
	}
	if overrides.MinConfidence > 0 {
		sc.MinConfidence = overrides.MinConfidence
	}
	if overrides.Workers > 0 {
		sc.Workers = overrides.Workers
	}

	// hotwords were validated with the configuration; a bad one falls back to the defaults
	if rules, err := ContextRulesFromConfig(cfg.Context); err == nil {
		sc.ContextRules = rules
		sc.DisableContext = rules == nil
	}
	if overrides.NoContext {
		sc.DisableContext = true
	}

	return sc
}
