// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

// npiPrefix is the card issuer prefix the NPI check digit is computed under
const npiPrefix = "80840"

// CheckNPI validates a US National Provider Identifier
func CheckNPI(text string) (bool, float64) {
	digits := extractDigits(text)
	if len(digits) != 10 {
		return false, 0
	}
	if digits[0] != '1' && digits[0] != '2' {
		return false, 0
	}
	if !Luhn(npiPrefix + digits) {
		return false, 0
	}
	return true, validConfidence
}

// CheckDEA validates a DEA registration number: two letters then seven digits
func CheckDEA(text string) (bool, float64) {
	s := compact(text, " ")
	if len(s) != 9 {
		return false, 0
	}
	if !isUpper(s[0]) || !isUpper(s[1]) {
		return false, 0
	}
	if !allDigits(s[2:]) {
		return false, 0
	}

	d := digitValues(s[2:])
	checksum := d[0] + d[2] + d[4] + 2*(d[1]+d[3]+d[5])
	if checksum%10 != d[6] {
		return false, 0
	}
	return true, validConfidence
}
