// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validators implements checksum and format checks for sensitive
// identifiers. Every check is a pure function that never panics on malformed
// input; it returns a definite reject instead.
package validators

import (
	"context"
	"sort"
	"strings"

	"risklens/internal/parallel"
)

// Func is a checksum validator returning validity and a confidence in [0,1]
type Func func(text string) (valid bool, confidence float64)

// Outcome is the result of gating a candidate match
type Outcome struct {
	Accepted        bool
	ConfidenceDelta float64
}

// Result is one entry of a batch run
type Result struct {
	Valid      bool    `json:"valid" yaml:"valid"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Info describes a validator for help output
type Info struct {
	Name        string
	Description string
	Example     string
	GateBoost   float64
	Checksum    bool // available through Check and Batch
}

type gate struct {
	accept func(string) bool
	boost  float64
}

var checksums = map[string]Func{
	"luhn":           checkLuhn,
	"ssn":            CheckSSN,
	"credit_card":    CheckCreditCard,
	"npi":            CheckNPI,
	"dea":            CheckDEA,
	"iban":           CheckIBAN,
	"vin":            CheckVIN,
	"aba_routing":    CheckABARouting,
	"ups_tracking":   CheckUPSTracking,
	"fedex_tracking": CheckFedExTracking,
	"usps_tracking":  CheckUSPSTracking,
	"cusip":          CheckCUSIP,
	"isin":           CheckISIN,
}

// accepts adapts a checksum into a gate predicate
func accepts(fn Func) func(string) bool {
	return func(text string) bool {
		ok, _ := fn(text)
		return ok
	}
}

var gates = map[string]gate{
	"luhn":           {accept: func(s string) bool { return Luhn(extractDigits(s)) }, boost: 0.15},
	"ssn":            {accept: gateSSN, boost: 0.10},
	"phone":          {accept: ValidPhone, boost: 0.05},
	"email":          {accept: ValidEmail, boost: 0.05},
	"ipv4":           {accept: ValidIPv4, boost: 0.05},
	"iban":           {accept: accepts(CheckIBAN), boost: 0.15},
	"npi":            {accept: accepts(CheckNPI), boost: 0.15},
	"cusip":          {accept: accepts(CheckCUSIP), boost: 0.15},
	"isin":           {accept: accepts(CheckISIN), boost: 0.15},
	"credit_card":    {accept: accepts(CheckCreditCard), boost: 0.10},
	"dea":            {accept: accepts(CheckDEA), boost: 0.10},
	"vin":            {accept: accepts(CheckVIN), boost: 0.10},
	"aba_routing":    {accept: accepts(CheckABARouting), boost: 0.10},
	"ups_tracking":   {accept: accepts(CheckUPSTracking), boost: 0.10},
	"fedex_tracking": {accept: accepts(CheckFedExTracking), boost: 0.10},
	"usps_tracking":  {accept: accepts(CheckUSPSTracking), boost: 0.10},
}

var descriptions = map[string][2]string{
	"luhn":           {"Mod-10 check digit over the digits of the value", "4532015112830366"},
	"ssn":            {"US social security number; reserved areas and zero blocks lower confidence", "123-45-6789"},
	"credit_card":    {"Issuer prefix table plus Luhn; a Luhn failure keeps the card at 0.87", "5425233430109903"},
	"npi":            {"US National Provider Identifier, Luhn over 80840 + number", "1234567893"},
	"dea":            {"DEA registration: two letters, seven digits, weighted check digit", "AB1234563"},
	"iban":           {"International bank account number, mod 97", "DE89370400440532013000"},
	"vin":            {"Vehicle identification number, weighted mod 11 check at position 9", "1M8GDM9AXKP042788"},
	"aba_routing":    {"US routing transit number, 3-7-1 weighted mod 10", "021000021"},
	"ups_tracking":   {"UPS 1Z tracking number", "1Z999AA10123456784"},
	"fedex_tracking": {"FedEx 12, 15, 20 and 22 digit tracking numbers", "123456789012"},
	"usps_tracking":  {"USPS international and 20/22 digit tracking numbers", "EA123456785US"},
	"cusip":          {"CUSIP security identifier", "037833100"},
	"isin":           {"International securities identification number", "US0378331005"},
	"phone":          {"Phone number carrying 10 to 15 digits", "(555) 123-4567"},
	"email":          {"Structural email address check", "user@example.com"},
	"ipv4":           {"Dotted-quad IPv4 address", "10.0.0.1"},
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup returns the checksum registered under name
func Lookup(name string) (Func, bool) {
	fn, ok := checksums[normalizeName(name)]
	return fn, ok
}

// Check runs the named checksum. Unknown names reject.
func Check(name, text string) (bool, float64) {
	fn, ok := Lookup(name)
	if !ok {
		return false, 0
	}
	return fn(text)
}

// Known reports whether name is a registered gate
func Known(name string) bool {
	_, ok := gates[normalizeName(name)]
	return ok
}

// Gate decides whether a candidate match survives. Unknown names accept with no boost
// so that a misconfigured validator never hides detections.
func Gate(name, text string) Outcome {
	g, ok := gates[normalizeName(name)]
	if !ok {
		return Outcome{Accepted: true}
	}
	if !g.accept(text) {
		return Outcome{}
	}
	return Outcome{Accepted: true, ConfidenceDelta: g.boost}
}

// Batch runs the named checksum over values on the worker pool, preserving order.
// Unknown names and items that fail yield an invalid result.
func Batch(ctx context.Context, name string, values []string) []Result {
	fn, ok := Lookup(name)
	if !ok {
		return make([]Result, len(values))
	}

	out, _ := parallel.Map(ctx, values, func(v string) Result {
		valid, confidence := fn(v)
		return Result{Valid: valid, Confidence: confidence}
	}, func(string) Result {
		return Result{}
	}, parallel.Options{Component: "validators", Operation: "batch_" + normalizeName(name)})
	return out
}

// Names returns the sorted checksum names
func Names() []string {
	names := make([]string, 0, len(checksums))
	for name := range checksums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists every gate and checksum, sorted by name
func Describe() []Info {
	infos := make([]Info, 0, len(gates))
	for name, g := range gates {
		d := descriptions[name]
		_, isChecksum := checksums[name]
		infos = append(infos, Info{
			Name:        name,
			Description: d[0],
			Example:     d[1],
			GateBoost:   g.boost,
			Checksum:    isChecksum,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
