// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import "strings"

var upsValues = map[byte]int{
	'A': 2, 'B': 3, 'C': 4, 'D': 5, 'E': 6, 'F': 7, 'G': 8, 'H': 9,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'Q': 8, 'R': 9,
	'S': 1, 'T': 2, 'U': 3, 'V': 4, 'W': 5, 'X': 6, 'Y': 7, 'Z': 8,
}

// CheckUPSTracking validates a "1Z" UPS tracking number
func CheckUPSTracking(text string) (bool, float64) {
	s := compact(text, " ")
	if len(s) != 18 || !strings.HasPrefix(s, "1Z") {
		return false, 0
	}

	values := make([]int, 0, 16)
	for i := 2; i < len(s); i++ {
		c := s[i]
		if isDigit(c) {
			values = append(values, int(c-'0'))
			continue
		}
		v, ok := upsValues[c]
		if !ok {
			return false, 0
		}
		values = append(values, v)
	}

	total := 0
	for i, v := range values[:15] {
		if i%2 == 1 {
			v *= 2
		}
		total += v
	}

	if (10-total%10)%10 != values[15] {
		return false, 0
	}
	return true, validConfidence
}

var fedex12Weights = [11]int{1, 7, 3, 1, 7, 3, 1, 7, 3, 1, 7}

// alternatingCheck weights digits 3,1,3,1... and returns the mod 10 complement
func alternatingCheck(d []int) int {
	total := 0
	for i, v := range d {
		if i%2 == 0 {
			total += v * 3
		} else {
			total += v
		}
	}
	return (10 - total%10) % 10
}

// CheckFedExTracking validates 12, 15, 20 and 22 digit FedEx tracking numbers
func CheckFedExTracking(text string) (bool, float64) {
	digits := extractDigits(text)
	d := digitValues(digits)

	var ok bool
	switch {
	case len(d) == 12:
		total := 0
		for i, w := range fedex12Weights {
			total += d[i] * w
		}
		ok = (total%11)%10 == d[11]
	case len(d) == 15 && strings.HasPrefix(digits, "96"):
		sum := 0
		for _, v := range d[:14] {
			sum += v
		}
		ok = (10-sum%10)%10 == d[14]
	case len(d) == 20, len(d) == 22 && strings.HasPrefix(digits, "92"):
		ok = alternatingCheck(d[:len(d)-1]) == d[len(d)-1]
	}

	if !ok {
		return false, 0
	}
	return true, validConfidence
}

var uspsInternationalWeights = [8]int{8, 6, 4, 2, 3, 5, 9, 7}

// CheckUSPSTracking validates international (AA123456789US) and numeric USPS tracking numbers
func CheckUSPSTracking(text string) (bool, float64) {
	s := compact(text, " ")

	if len(s) == 13 && isUpper(s[0]) && isUpper(s[1]) && isUpper(s[11]) && isUpper(s[12]) {
		body := s[2:11]
		if !allDigits(body) {
			return false, 0
		}
		d := digitValues(body)
		total := 0
		for i, w := range uspsInternationalWeights {
			total += d[i] * w
		}
		check := 11 - total%11
		switch check {
		case 10:
			check = 0
		case 11:
			check = 5
		}
		if check != d[8] {
			return false, 0
		}
		return true, validConfidence
	}

	d := digitValues(extractDigits(s))
	if len(d) != 20 && len(d) != 22 {
		return false, 0
	}
	if alternatingCheck(d[:len(d)-1]) != d[len(d)-1] {
		return false, 0
	}
	return true, validConfidence
}
