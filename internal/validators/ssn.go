// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import "strings"

const (
	ssnReservedAreaConfidence = 0.85
	ssnZeroBlockConfidence    = 0.80
)

type ssnParts struct {
	area, group, serial string
}

// splitSSN accepts digits separated by dashes or spaces and exactly nine digits
func splitSSN(text string) (ssnParts, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ssnParts{}, false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if !isDigit(c) && c != '-' && c != ' ' {
			return ssnParts{}, false
		}
	}

	digits := extractDigits(text)
	if len(digits) != 9 {
		return ssnParts{}, false
	}
	return ssnParts{area: digits[:3], group: digits[3:5], serial: digits[5:]}, true
}

func (p ssnParts) reservedArea() bool {
	return p.area == "000" || p.area == "666" || p.area[0] == '9'
}

func (p ssnParts) zeroBlock() bool {
	return p.group == "00" || p.serial == "0000"
}

// CheckSSN validates a US social security number. Structurally valid numbers in
// reserved ranges stay valid at reduced confidence.
func CheckSSN(text string) (bool, float64) {
	parts, ok := splitSSN(text)
	if !ok {
		return false, 0
	}

	confidence := validConfidence
	if parts.reservedArea() {
		confidence = ssnReservedAreaConfidence
	}
	if parts.zeroBlock() && confidence > ssnZeroBlockConfidence {
		confidence = ssnZeroBlockConfidence
	}
	return true, confidence
}

// gateSSN rejects anything outside the issuable ranges
func gateSSN(text string) bool {
	parts, ok := splitSSN(text)
	return ok && !parts.reservedArea() && !parts.zeroBlock()
}
