// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"regexp/syntax"
	"strings"
	"unicode/utf8"
)

// minLiteralLen is the shortest literal worth indexing in the prefilter
const minLiteralLen = 2

// maxLiteralSet bounds the alternatives kept for one pattern
const maxLiteralSet = 64

// requiredLiterals returns a set of lower-case strings such that every match of
// the expression contains at least one of them. ok is false when no such set
// could be proven and the pattern must always be tried.
func requiredLiterals(expr string) (lits []string, ok bool) {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return nil, false
	}
	lits, ok = literalsOf(re.Simplify())
	if !ok || len(lits) == 0 {
		return nil, false
	}
	return dedupe(lits), true
}

func literalsOf(re *syntax.Regexp) ([]string, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		lit := string(re.Rune)
		if len(lit) < minLiteralLen || !isASCII(lit) {
			return nil, false
		}
		return []string{strings.ToLower(lit)}, true

	case syntax.OpCapture, syntax.OpPlus:
		return literalsOf(re.Sub[0])

	case syntax.OpRepeat:
		if re.Min < 1 {
			return nil, false
		}
		return literalsOf(re.Sub[0])

	case syntax.OpConcat:
		var best []string
		for _, sub := range re.Sub {
			lits, ok := literalsOf(sub)
			if !ok {
				continue
			}
			if best == nil || moreSelective(lits, best) {
				best = lits
			}
		}
		return best, best != nil

	case syntax.OpAlternate:
		var union []string
		for _, sub := range re.Sub {
			lits, ok := literalsOf(sub)
			if !ok {
				return nil, false
			}
			union = append(union, lits...)
			if len(union) > maxLiteralSet {
				return nil, false
			}
		}
		return union, len(union) > 0
	}

	return nil, false
}

// moreSelective prefers the set whose shortest literal is longer, then the smaller set
func moreSelective(a, b []string) bool {
	ma, mb := shortest(a), shortest(b)
	if ma != mb {
		return ma > mb
	}
	return len(a) < len(b)
}

func shortest(lits []string) int {
	n := -1
	for _, l := range lits {
		if n < 0 || len(l) < n {
			n = len(l)
		}
	}
	return n
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func dedupe(lits []string) []string {
	seen := make(map[string]struct{}, len(lits))
	out := lits[:0]
	for _, l := range lits {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// foldForPrefilter lower-cases text for literal lookup. The Kelvin sign and long s
// fold to ASCII letters under (?i), so they are mapped too.
func foldForPrefilter(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '\u212A':
			return 'k'
		case r == '\u017F':
			return 's'
		}
		return r
	}, text)
}
