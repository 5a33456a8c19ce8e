// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checksumCase struct {
	name       string
	input      string
	valid      bool
	confidence float64
}

func runChecksumCases(t *testing.T, fn Func, cases []checksumCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid, confidence := fn(tc.input)
			assert.Equal(t, tc.valid, valid)
			assert.InDelta(t, tc.confidence, confidence, 1e-9)
		})
	}
}

func TestLuhn(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"4532015112830366", true},
		{"4532015112830367", false},
		{"5425233430109903", true},
		{"378282246310005", true},
		{"0", false},
		{"", false},
		{"4532-0151", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Luhn(tc.input), tc.input)
	}
}

func TestCheckSSN(t *testing.T) {
	runChecksumCases(t, CheckSSN, []checksumCase{
		{"dashed", "123-45-6789", true, 0.99},
		{"spaced", " 123 45 6789 ", true, 0.99},
		{"bare", "123456789", true, 0.99},
		{"area 000", "000-12-3456", true, 0.85},
		{"area 666", "666-12-3456", true, 0.85},
		{"area 9xx", "912-34-5678", true, 0.85},
		{"group 00", "123-00-4567", true, 0.80},
		{"serial 0000", "123-45-0000", true, 0.80},
		{"reserved and zero block", "900-00-0000", true, 0.80},
		{"too short", "12-345-678", false, 0},
		{"letters", "123-45-678a", false, 0},
		{"empty", "", false, 0},
	})
}

func TestCheckCreditCard(t *testing.T) {
	runChecksumCases(t, CheckCreditCard, []checksumCase{
		{"visa", "4532015112830366", true, 0.99},
		{"visa formatted", "4532-0151-1283-0366", true, 0.99},
		{"visa bad luhn keeps reduced confidence", "4532015112830367", true, 0.87},
		{"mastercard", "5425233430109903", true, 0.99},
		{"mastercard 2-series", "2221000000000009", true, 0.99},
		{"amex", "378282246310005", true, 0.99},
		{"discover 6011", "6011111111111117", true, 0.99},
		{"discover 644", "6445644564456445", true, 0.99},
		{"jcb", "3530111333300000", true, 0.99},
		{"diners", "30569309025904", true, 0.99},
		{"unknown prefix", "1234567890123456", false, 0},
		{"too short", "411111111111", false, 0},
		{"too long", "41111111111111111111", false, 0},
	})
}

func TestCardIssuer(t *testing.T) {
	cases := map[string]string{
		"4111111111111111": "VISA",
		"5500000000000004": "MASTERCARD",
		"2720990000000000": "MASTERCARD",
		"371449635398431":  "AMERICAN_EXPRESS",
		"6011000000000004": "DISCOVER",
		"6500000000000002": "DISCOVER",
		"3530111333300000": "JCB",
		"36227206271667":   "DINERS_CLUB",
		"9999999999999999": "",
		"":                 "",
	}
	for digits, want := range cases {
		assert.Equal(t, want, CardIssuer(digits), digits)
	}
}

func TestHealthcareChecks(t *testing.T) {
	t.Run("npi", func(t *testing.T) {
		runChecksumCases(t, CheckNPI, []checksumCase{
			{"valid", "1234567893", true, 0.99},
			{"valid 2", "1245319599", true, 0.99},
			{"bad check digit", "1234567890", false, 0},
			{"bad leading digit", "3234567893", false, 0},
			{"short", "123456789", false, 0},
		})
	})
	t.Run("dea", func(t *testing.T) {
		runChecksumCases(t, CheckDEA, []checksumCase{
			{"valid", "AB1234563", true, 0.99},
			{"lower case", "ab1234563", true, 0.99},
			{"bad check digit", "AB1234564", false, 0},
			{"digit prefix", "1B1234563", false, 0},
			{"short", "AB123456", false, 0},
		})
	})
}

func TestBankingChecks(t *testing.T) {
	t.Run("iban", func(t *testing.T) {
		runChecksumCases(t, CheckIBAN, []checksumCase{
			{"gb spaced", "GB82 WEST 1234 5698 7654 32", true, 0.99},
			{"de", "DE89370400440532013000", true, 0.99},
			{"fr with letter", "FR1420041010050500013M02606", true, 0.99},
			{"bad check", "GB82WEST12345698765433", false, 0},
			{"too short", "GB82WEST1234", false, 0},
			{"punctuation", "GB82-WEST-1234-5698-7654-32", false, 0},
		})
	})
	t.Run("aba", func(t *testing.T) {
		runChecksumCases(t, CheckABARouting, []checksumCase{
			{"valid", "021000021", true, 0.99},
			{"valid 2", "011000015", true, 0.99},
			{"valid 3", "121000358", true, 0.99},
			{"bad checksum", "021000022", false, 0},
			{"bad prefix", "991000021", false, 0},
			{"short", "02100002", false, 0},
		})
	})
}

func TestCheckVIN(t *testing.T) {
	runChecksumCases(t, CheckVIN, []checksumCase{
		{"x check digit", "1M8GDM9AXKP042788", true, 0.99},
		{"numeric check digit", "1HGCM82633A004352", true, 0.99},
		{"wrong check digit", "1M8GDM9AYKP042788", false, 0},
		{"contains I", "1M8GDM9AXKP04278I", false, 0},
		{"short", "1M8GDM9AXKP04278", false, 0},
	})
}

func TestTrackingChecks(t *testing.T) {
	t.Run("ups", func(t *testing.T) {
		runChecksumCases(t, CheckUPSTracking, []checksumCase{
			{"valid", "1Z999AA10123456784", true, 0.99},
			{"valid 2", "1Z12345E6605272234", true, 0.99},
			{"spaced", "1Z 999 AA1 0123 4567 84", true, 0.99},
			{"bad check", "1Z999AA10123456785", false, 0},
			{"wrong prefix", "2Z999AA10123456784", false, 0},
		})
	})
	t.Run("fedex", func(t *testing.T) {
		runChecksumCases(t, CheckFedExTracking, []checksumCase{
			{"12 digit", "123456789012", true, 0.99},
			{"15 digit", "961234567890127", true, 0.99},
			{"20 digit", "12345678901234567890", true, 0.99},
			{"22 digit", "9212345678901234567891", true, 0.99},
			{"12 digit bad", "123456789013", false, 0},
			{"15 digit wrong prefix", "951234567890127", false, 0},
			{"22 digit wrong prefix", "9312345678901234567891", false, 0},
			{"other length", "1234567", false, 0},
		})
	})
	t.Run("usps", func(t *testing.T) {
		runChecksumCases(t, CheckUSPSTracking, []checksumCase{
			{"international", "EA123456785US", true, 0.99},
			{"international lower", "rr123456785us", true, 0.99},
			{"international bad", "EA123456784US", false, 0},
			{"20 digit", "94001000000000000006", true, 0.99},
			{"22 digit", "9400111899223857230972", true, 0.99},
			{"22 digit bad", "9400111899223857230973", false, 0},
			{"other length", "940011189922", false, 0},
		})
	})
}

func TestSecuritiesChecks(t *testing.T) {
	t.Run("cusip", func(t *testing.T) {
		runChecksumCases(t, CheckCUSIP, []checksumCase{
			{"apple", "037833100", true, 0.99},
			{"letter", "38259P508", true, 0.99},
			{"dashed", "0378-33100", true, 0.99},
			{"bad check", "037833101", false, 0},
			{"bad char", "0378!3100", false, 0},
			{"letter check position", "03783310A", false, 0},
		})
	})
	t.Run("isin", func(t *testing.T) {
		runChecksumCases(t, CheckISIN, []checksumCase{
			{"apple", "US0378331005", true, 0.99},
			{"gb", "GB0002634946", true, 0.99},
			{"bad check", "US0378331006", false, 0},
			{"digit country", "1S0378331005", false, 0},
			{"letter check char", "US037833100A", false, 0},
			{"short", "US037833100", false, 0},
		})
	})
}

func TestContactGates(t *testing.T) {
	phone := map[string]bool{
		"(555) 123-4567":   true,
		"+14155551234":     true,
		"123456789":        false,
		"1234567890123456": false,
	}
	for in, want := range phone {
		assert.Equal(t, want, ValidPhone(in), in)
	}

	email := map[string]bool{
		"user@example.com": true,
		"a.b@mail.co.uk":   true,
		"user@example":     false,
		"@example.com":     false,
		"user@.example":    false,
		"user@example.":    false,
		"user@":            false,
		"no-at-sign":       false,
	}
	for in, want := range email {
		assert.Equal(t, want, ValidEmail(in), in)
	}

	ipv4 := map[string]bool{
		"10.0.0.1":        true,
		"255.255.255.255": true,
		"256.1.1.1":       false,
		"-1.2.3.4":        false,
		"a.b.c.d":         false,
		"1.2.3":           false,
		"1.2.3.4.5":       false,
	}
	for in, want := range ipv4 {
		assert.Equal(t, want, ValidIPv4(in), in)
	}
}

func TestCheckUnknownNameRejects(t *testing.T) {
	valid, confidence := Check("not_a_validator", "4532015112830366")
	assert.False(t, valid)
	assert.Zero(t, confidence)

	valid, confidence = Check(" LUHN ", "4532015112830366")
	assert.True(t, valid)
	assert.InDelta(t, 0.99, confidence, 1e-9)
}

func TestGate(t *testing.T) {
	cases := []struct {
		name      string
		validator string
		input     string
		accepted  bool
		delta     float64
	}{
		{"luhn pass", "luhn", "4532-0151-1283-0366", true, 0.15},
		{"luhn fail", "luhn", "4532015112830367", false, 0},
		{"ssn pass", "ssn", "123-45-6789", true, 0.10},
		{"ssn reserved area rejected", "ssn", "000-12-3456", false, 0},
		{"ssn zero group rejected", "ssn", "123-00-6789", false, 0},
		{"phone", "phone", "(555) 123-4567", true, 0.05},
		{"email", "email", "test@example.com", true, 0.05},
		{"ipv4", "ipv4", "10.0.0.1", true, 0.05},
		{"iban", "iban", "DE89370400440532013000", true, 0.15},
		{"npi", "npi", "1234567893", true, 0.15},
		{"cusip", "cusip", "037833100", true, 0.15},
		{"isin", "isin", "US0378331005", true, 0.15},
		{"credit card", "credit_card", "5425233430109903", true, 0.10},
		{"unknown passes through", "mystery", "anything", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Gate(tc.validator, tc.input)
			assert.Equal(t, tc.accepted, out.Accepted)
			assert.InDelta(t, tc.delta, out.ConfidenceDelta, 1e-9)
		})
	}
	assert.True(t, Known("ISIN"))
	assert.False(t, Known("mystery"))
}

func TestBatch(t *testing.T) {
	values := []string{"4532015112830366", "4532015112830367", "", "5425233430109903"}

	out := Batch(context.Background(), "luhn", values)
	require.Len(t, out, len(values))
	assert.Equal(t, []bool{true, false, false, true}, []bool{out[0].Valid, out[1].Valid, out[2].Valid, out[3].Valid})

	unknown := Batch(context.Background(), "nope", values)
	require.Len(t, unknown, len(values))
	for _, r := range unknown {
		assert.Equal(t, Result{}, r)
	}

	assert.Empty(t, Batch(context.Background(), "ssn", nil))
}

func TestNamesAndDescribe(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{
		"aba_routing", "credit_card", "cusip", "dea", "fedex_tracking", "iban",
		"isin", "luhn", "npi", "ssn", "ups_tracking", "usps_tracking", "vin",
	}, names)

	for _, info := range Describe() {
		assert.NotEmpty(t, info.Description, info.Name)
		assert.NotEmpty(t, info.Example, info.Name)
		if info.Checksum {
			valid, _ := Check(info.Name, info.Example)
			assert.True(t, valid, "example for %s should validate", info.Name)
		}
		assert.True(t, Gate(info.Name, info.Example).Accepted, "example for %s should pass its gate", info.Name)
	}
}

func TestMalformedInputNeverPanics(t *testing.T) {
	inputs := []string{"", " ", "\x00\xff", "ÄÖÜ-ß", "1Z", "@@@", "..........", "9999999999999999999999999999999999999"}
	for _, name := range Names() {
		for _, in := range inputs {
			assert.NotPanics(t, func() { Check(name, in) }, "%s(%q)", name, in)
			assert.NotPanics(t, func() { Gate(name, in) }, "%s(%q)", name, in)
		}
	}
}
