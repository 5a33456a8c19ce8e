// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

// PatternSpec describes one entry of a pattern catalog
type PatternSpec struct {
	Name       string  `yaml:"name" json:"name"`
	Regex      string  `yaml:"regex" json:"regex"`
	EntityType string  `yaml:"entity_type" json:"entity_type"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
	Group      int     `yaml:"group,omitempty" json:"group,omitempty"` // 0 selects the whole match
	Validator  string  `yaml:"validator,omitempty" json:"validator,omitempty"`
}

// DisplayName returns Name, falling back to the entity type
func (s PatternSpec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.EntityType
}

// RawMatch is a candidate detection before overlap resolution.
// Start and End are byte offsets and Text is exactly text[Start:End].
type RawMatch struct {
	PatternID   int     `json:"pattern_id"`
	PatternName string  `json:"pattern_name"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Text        string  `json:"text"`
	EntityType  string  `json:"entity_type"`
	Confidence  float64 `json:"confidence"`
	Validator   string  `json:"validator,omitempty"`
}

// CompileFailure records a catalog entry that was dropped during compilation
type CompileFailure struct {
	Index int    // position in the input catalog
	Name  string // display name of the entry
	Err   error
}
