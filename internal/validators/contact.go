// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"strconv"
	"strings"
)

// ValidPhone accepts numbers carrying 10 to 15 digits (E.164 upper bound)
func ValidPhone(text string) bool {
	n := len(extractDigits(text))
	return n >= 10 && n <= 15
}

// ValidEmail performs a structural check: non-empty local part and a dotted domain
func ValidEmail(text string) bool {
	at := strings.LastIndexByte(text, '@')
	if at <= 0 {
		return false
	}
	local, domain := text[:at], text[at+1:]
	if strings.ContainsRune(local, '@') {
		return false
	}
	if domain == "" || !strings.Contains(domain, ".") {
		return false
	}
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	return true
}

// ValidIPv4 accepts dotted quads with each octet in 0-255
func ValidIPv4(text string) bool {
	parts := strings.Split(text, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if !allDigits(part) || len(part) > 3 {
			return false
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > 255 {
			return false
		}
	}
	return true
}
