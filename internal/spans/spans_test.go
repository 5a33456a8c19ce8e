// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func span(start, end int, confidence float64) Span {
	return Span{Start: start, End: end, EntityType: "SSN", Confidence: confidence}
}

func TestCheckOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		spans          []Span
		allowIdentical bool
		want           []Pair
	}{
		{"partial overlap", []Span{span(0, 10, 1), span(5, 15, 1)}, true, []Pair{{0, 1}}},
		{"identical allowed", []Span{span(0, 10, 1), span(0, 10, 1)}, true, nil},
		{"identical reported", []Span{span(0, 10, 1), span(0, 10, 1)}, false, []Pair{{0, 1}}},
		{"adjacent", []Span{span(0, 5, 1), span(5, 10, 1)}, false, nil},
		{"empty", nil, false, nil},
		{"unsorted input keeps original indices", []Span{span(20, 30, 1), span(0, 25, 1), span(40, 50, 1)}, false, []Pair{{0, 1}}},
		{"nested", []Span{span(0, 100, 1), span(10, 20, 1), span(30, 40, 1)}, false, []Pair{{0, 1}, {0, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckOverlaps(tt.spans, tt.allowIdentical))
		})
	}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name  string
		spans []Span
		want  []int
	}{
		{"higher confidence wins", []Span{span(0, 10, 0.85), span(5, 15, 0.99)}, []int{1}},
		{"longer span wins on tie", []Span{span(0, 5, 0.99), span(0, 10, 0.99)}, []int{1}},
		{"full tie keeps earlier", []Span{span(0, 10, 0.9), span(0, 10, 0.9)}, []int{0}},
		{"adjacent both kept", []Span{span(0, 5, 0.9), span(5, 10, 0.9)}, []int{0, 1}},
		{"empty", nil, []int{}},
		{"single", []Span{span(3, 4, 0.1)}, []int{0}},
		{"winner keeps eliminating", []Span{span(0, 20, 0.99), span(2, 5, 0.5), span(10, 12, 0.5), span(30, 35, 0.5)}, []int{0, 3}},
		{"loser stops scanning", []Span{span(0, 10, 0.5), span(5, 15, 0.9), span(12, 20, 0.8)}, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deduplicate(tt.spans))
		})
	}
}

func TestBatchPreservesGroupOrder(t *testing.T) {
	groups := [][]Span{
		{span(0, 10, 0.85), span(5, 15, 0.99)},
		{},
		{span(0, 5, 0.9), span(5, 10, 0.9)},
	}

	kept := DeduplicateBatch(context.Background(), groups)
	assert.Equal(t, [][]int{{1}, {}, {0, 1}}, kept)

	pairs := CheckOverlapsBatch(context.Background(), groups, true)
	assert.Len(t, pairs, 3)
	assert.Equal(t, []Pair{{0, 1}}, pairs[0])
	assert.Empty(t, pairs[1])
	assert.Empty(t, pairs[2])
}
