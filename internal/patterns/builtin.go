// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

// builtinPatterns is the default catalog used when no configuration supplies one
var builtinPatterns = []PatternSpec{
	// Government identifiers
	{Name: "SSN", Regex: `\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`, EntityType: "SSN", Confidence: 0.85, Validator: "ssn"},

	// Payment cards
	{Name: "CREDIT_CARD_VISA", Regex: `\b4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, EntityType: "CREDIT_CARD", Confidence: 0.80, Validator: "luhn"},
	{Name: "CREDIT_CARD_MASTERCARD", Regex: `\b(?:5[1-5]\d{2}|2(?:2[2-9]\d|[3-6]\d{2}|7[01]\d|720))[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, EntityType: "CREDIT_CARD", Confidence: 0.80, Validator: "luhn"},
	{Name: "CREDIT_CARD_AMEX", Regex: `\b3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}\b`, EntityType: "CREDIT_CARD", Confidence: 0.80, Validator: "luhn"},
	{Name: "CREDIT_CARD_DISCOVER", Regex: `\b6(?:011|5\d{2}|4[4-9]\d)[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, EntityType: "CREDIT_CARD", Confidence: 0.80, Validator: "luhn"},

	// Banking and securities
	{Name: "IBAN", Regex: `\b[A-Z]{2}\d{2}(?:\s?[A-Z0-9]{4}){2,7}(?:\s?[A-Z0-9]{1,4})?\b`, EntityType: "IBAN", Confidence: 0.75, Validator: "iban"},
	{Name: "ISIN", Regex: `\b[A-Z]{2}[A-Z0-9]{9}\d\b`, EntityType: "ISIN", Confidence: 0.70, Validator: "isin"},
	{Name: "CUSIP", Regex: `(?i)\bCUSIP[\s:#]*([0-9A-Z]{8}\d)\b`, EntityType: "CUSIP", Confidence: 0.75, Group: 1, Validator: "cusip"},

	// Contact
	{Name: "EMAIL", Regex: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, EntityType: "EMAIL", Confidence: 0.90, Validator: "email"},
	{Name: "PHONE_US", Regex: `(?:\+1[-.\s]?)?\(?\b\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`, EntityType: "PHONE", Confidence: 0.70, Validator: "phone"},

	// Network
	{Name: "IPV4", Regex: `\b(?:\d{1,3}\.){3}\d{1,3}\b`, EntityType: "IP_ADDRESS", Confidence: 0.80, Validator: "ipv4"},
	{Name: "MAC_ADDRESS", Regex: `\b(?:[0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}\b`, EntityType: "MAC_ADDRESS", Confidence: 0.75},

	// Healthcare
	{Name: "NPI", Regex: `\b[12]\d{9}\b`, EntityType: "NPI", Confidence: 0.70, Validator: "npi"},
	{Name: "DEA", Regex: `\b[A-Za-z]{2}\d{7}\b`, EntityType: "DEA", Confidence: 0.70, Validator: "dea"},
	{Name: "MRN", Regex: `(?i)\b(?:MRN|MR#|Med(?:ical)?\s*Rec(?:ord)?(?:\s*(?:No|Number|#))?)[\s:#-]*(\d{6,12})\b`, EntityType: "MRN", Confidence: 0.85, Group: 1},
	{Name: "DATE_OF_BIRTH", Regex: `(?i)\b(?:DOB|date\s+of\s+birth|birth\s*date|born(?:\s+on)?)\s*[:-]?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`, EntityType: "DATE_DOB", Confidence: 0.85, Group: 1},

	// Credentials
	{Name: "AWS_ACCESS_KEY", Regex: `\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`, EntityType: "AWS_ACCESS_KEY", Confidence: 0.95},
	{Name: "GITHUB_TOKEN", Regex: `\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9_]{36}\b`, EntityType: "GITHUB_TOKEN", Confidence: 0.95},
	{Name: "PRIVATE_KEY", Regex: `-----BEGIN (?:[A-Z]+ )*PRIVATE KEY-----`, EntityType: "PRIVATE_KEY", Confidence: 0.99},
	{Name: "JWT", Regex: `\beyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`, EntityType: "JWT", Confidence: 0.90},
	{Name: "API_KEY", Regex: `(?i)\b(?:api[_-]?key|secret[_-]?key|access[_-]?token)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{16,64})`, EntityType: "API_KEY", Confidence: 0.70, Group: 1},

	// Markings
	{Name: "CLASSIFICATION", Regex: `\b(?:TOP SECRET|SECRET|CONFIDENTIAL)(?://[A-Z][A-Z/]*)?\b`, EntityType: "CLASSIFICATION_LEVEL", Confidence: 0.80},

	// Vehicles and shipping
	{Name: "VIN", Regex: `\b[A-HJ-NPR-Z0-9]{17}\b`, EntityType: "VIN", Confidence: 0.60, Validator: "vin"},
	{Name: "UPS_TRACKING", Regex: `\b1Z[0-9A-Z]{16}\b`, EntityType: "TRACKING_NUMBER", Confidence: 0.80, Validator: "ups_tracking"},
}

// Builtin returns a copy of the default catalog
func Builtin() []PatternSpec {
	return append([]PatternSpec(nil), builtinPatterns...)
}
