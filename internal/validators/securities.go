// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"strconv"
	"strings"
)

func cusipValue(c byte) (int, bool) {
	switch {
	case isDigit(c):
		return int(c - '0'), true
	case isUpper(c):
		return int(c-'A') + 10, true
	case c == '*':
		return 36, true
	case c == '@':
		return 37, true
	case c == '#':
		return 38, true
	}
	return 0, false
}

// CheckCUSIP validates a nine character CUSIP security identifier
func CheckCUSIP(text string) (bool, float64) {
	s := compact(text, " -")
	if len(s) != 9 {
		return false, 0
	}

	total := 0
	for i := 0; i < 8; i++ {
		v, ok := cusipValue(s[i])
		if !ok {
			return false, 0
		}
		if i%2 == 1 {
			v *= 2
		}
		total += v/10 + v%10
	}

	if !isDigit(s[8]) {
		return false, 0
	}
	if (10-total%10)%10 != int(s[8]-'0') {
		return false, 0
	}
	return true, validConfidence
}

// CheckISIN validates a twelve character international securities identifier
func CheckISIN(text string) (bool, float64) {
	s := compact(text, " ")
	if len(s) != 12 {
		return false, 0
	}
	if !isUpper(s[0]) || !isUpper(s[1]) {
		return false, 0
	}

	var expanded strings.Builder
	for i := 0; i < 11; i++ {
		c := s[i]
		switch {
		case isDigit(c):
			expanded.WriteByte(c)
		case isUpper(c):
			expanded.WriteString(strconv.Itoa(int(c-'A') + 10))
		default:
			return false, 0
		}
	}

	if !isDigit(s[11]) {
		return false, 0
	}
	expanded.WriteByte(s[11])

	if !Luhn(expanded.String()) {
		return false, 0
	}
	return true, validConfidence
}
