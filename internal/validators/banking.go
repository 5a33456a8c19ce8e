// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

const (
	ibanMinLength = 15
	ibanMaxLength = 34
)

// CheckIBAN validates an international bank account number with the ISO 7064 mod 97 check
func CheckIBAN(text string) (bool, float64) {
	s := compact(text, " ")
	if len(s) < ibanMinLength || len(s) > ibanMaxLength {
		return false, 0
	}

	rearranged := s[4:] + s[:4]
	remainder := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case isDigit(c):
			remainder = (remainder*10 + int(c-'0')) % 97
		case isUpper(c):
			remainder = (remainder*100 + int(c-'A') + 10) % 97
		default:
			return false, 0
		}
	}

	if remainder != 1 {
		return false, 0
	}
	return true, validConfidence
}

// validABAPrefix reports whether the first two digits name a Federal Reserve routing range
func validABAPrefix(prefix int) bool {
	return (prefix >= 0 && prefix <= 12) ||
		(prefix >= 21 && prefix <= 32) ||
		(prefix >= 61 && prefix <= 72) ||
		prefix == 80
}

// CheckABARouting validates a US bank routing transit number
func CheckABARouting(text string) (bool, float64) {
	digits := extractDigits(text)
	if len(digits) != 9 {
		return false, 0
	}

	d := digitValues(digits)
	if !validABAPrefix(d[0]*10 + d[1]) {
		return false, 0
	}

	sum := 3*(d[0]+d[3]+d[6]) + 7*(d[1]+d[4]+d[7]) + (d[2] + d[5] + d[8])
	if sum%10 != 0 {
		return false, 0
	}
	return true, validConfidence
}
