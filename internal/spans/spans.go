// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package spans resolves overlapping detections with a sort-then-sweep pass.
package spans

import (
	"context"
	"sort"

	"risklens/internal/parallel"
)

// Span is a detection range [Start, End) with its confidence
type Span struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	EntityType string  `json:"entity_type"`
	Confidence float64 `json:"confidence"`
}

// Len returns End - Start
func (s Span) Len() int {
	return s.End - s.Start
}

// Pair references two overlapping spans by original index, I < J
type Pair struct {
	I int `json:"i"`
	J int `json:"j"`
}

// sortedOrder returns span indices ordered by (start, end), ties by original index
func sortedOrder(spans []Span) []int {
	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := spans[order[a]], spans[order[b]]
		if sa.Start != sb.Start {
			return sa.Start < sb.Start
		}
		return sa.End < sb.End
	})
	return order
}

// CheckOverlaps returns every overlapping pair. Pairs with identical bounds are
// left out when allowIdentical is set. Output is sorted by (I, J).
func CheckOverlaps(spans []Span, allowIdentical bool) []Pair {
	order := sortedOrder(spans)
	var pairs []Pair

	for a := 0; a < len(order); a++ {
		cur := spans[order[a]]
		for b := a + 1; b < len(order); b++ {
			cand := spans[order[b]]
			// sorted by start: nothing further can reach into cur
			if cand.Start >= cur.End {
				break
			}
			if allowIdentical && cand.Start == cur.Start && cand.End == cur.End {
				continue
			}
			i, j := order[a], order[b]
			if i > j {
				i, j = j, i
			}
			pairs = append(pairs, Pair{I: i, J: j})
		}
	}

	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].I != pairs[y].I {
			return pairs[x].I < pairs[y].I
		}
		return pairs[x].J < pairs[y].J
	})
	return pairs
}

// Deduplicate returns the original indices that survive overlap resolution,
// ascending. Between two overlapping spans the higher confidence wins, then the
// longer span, then the one earlier in (start, end) order.
func Deduplicate(spans []Span) []int {
	order := sortedOrder(spans)
	keep := make([]bool, len(spans))
	for i := range keep {
		keep[i] = true
	}

	for a := 0; a < len(order); a++ {
		i := order[a]
		if !keep[i] {
			continue
		}
		cur := spans[i]
		for b := a + 1; b < len(order); b++ {
			j := order[b]
			cand := spans[j]
			if cand.Start >= cur.End {
				break
			}
			if !keep[j] {
				continue
			}
			if candidateWins(cur, cand) {
				keep[i] = false
				// a dropped span cannot eliminate anything else
				break
			}
			keep[j] = false
		}
	}

	kept := make([]int, 0, len(spans))
	for i, ok := range keep {
		if ok {
			kept = append(kept, i)
		}
	}
	return kept
}

// candidateWins reports whether cand beats cur; a full tie keeps cur
func candidateWins(cur, cand Span) bool {
	if cand.Confidence != cur.Confidence {
		return cand.Confidence > cur.Confidence
	}
	return cand.Len() > cur.Len()
}

// CheckOverlapsBatch runs CheckOverlaps over independent groups, preserving group order
func CheckOverlapsBatch(ctx context.Context, groups [][]Span, allowIdentical bool) [][]Pair {
	out, _ := parallel.Map(ctx, groups, func(g []Span) []Pair {
		return CheckOverlaps(g, allowIdentical)
	}, func([]Span) []Pair {
		return nil
	}, parallel.Options{Component: "spans", Operation: "check_overlaps_batch"})
	return out
}

// DeduplicateBatch runs Deduplicate over independent groups, preserving group order
func DeduplicateBatch(ctx context.Context, groups [][]Span) [][]int {
	out, _ := parallel.Map(ctx, groups, Deduplicate, func([]Span) []int {
		return []int{}
	}, parallel.Options{Component: "spans", Operation: "deduplicate_batch"})
	return out
}
