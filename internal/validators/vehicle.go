// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

var vinTransliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// CheckVIN validates a 17 character vehicle identification number
func CheckVIN(text string) (bool, float64) {
	s := compact(text, " ")
	if len(s) != 17 {
		return false, 0
	}

	sum := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var value int
		if isDigit(c) {
			value = int(c - '0')
		} else {
			// I, O and Q are absent from the table
			v, ok := vinTransliteration[c]
			if !ok {
				return false, 0
			}
			value = v
		}
		sum += value * vinWeights[i]
	}

	expected := byte('0' + sum%11)
	if sum%11 == 10 {
		expected = 'X'
	}
	if s[8] != expected {
		return false, 0
	}
	return true, validConfidence
}
