// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import "strconv"

// Confidence for a card with a known issuer prefix whose Luhn check fails
const cardLuhnFailureConfidence = 0.87

// issuerRange maps a leading-digit range to a card issuer
type issuerRange struct {
	Width  int // number of leading digits compared
	Start  int
	End    int
	Issuer string
}

var issuerRanges = []issuerRange{
	{1, 4, 4, "VISA"},
	{2, 51, 55, "MASTERCARD"},
	{4, 2221, 2720, "MASTERCARD"},
	{2, 34, 34, "AMERICAN_EXPRESS"},
	{2, 37, 37, "AMERICAN_EXPRESS"},
	{4, 6011, 6011, "DISCOVER"},
	{2, 65, 65, "DISCOVER"},
	{3, 644, 649, "DISCOVER"},
	{2, 35, 35, "JCB"},
	{2, 36, 36, "DINERS_CLUB"},
	{3, 300, 305, "DINERS_CLUB"},
	{2, 38, 39, "DINERS_CLUB"},
}

// CardIssuer returns the issuer for a digit string, or "" when no prefix matches
func CardIssuer(digits string) string {
	for _, r := range issuerRanges {
		if len(digits) < r.Width {
			continue
		}
		prefix, err := strconv.Atoi(digits[:r.Width])
		if err != nil {
			return ""
		}
		if prefix >= r.Start && prefix <= r.End {
			return r.Issuer
		}
	}
	return ""
}

// CheckCreditCard validates a payment card number. A known prefix with a failing
// Luhn digit is still reported valid at reduced confidence.
func CheckCreditCard(text string) (bool, float64) {
	digits := extractDigits(text)
	if len(digits) < 13 || len(digits) > 19 {
		return false, 0
	}
	if CardIssuer(digits) == "" {
		return false, 0
	}
	if !Luhn(digits) {
		return true, cardLuhnFailureConfidence
	}
	return true, validConfidence
}
