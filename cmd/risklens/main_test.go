// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risklens/internal/formatters/shared"
)

// isolate keeps config discovery away from the developer's files
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "risklens ")
}

func TestScanTextJSON(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--text", "SSN 123-45-6789", "--format", "json")
	require.Equal(t, exitOK, code)

	var view shared.ReportView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Results, 1)
	assert.Equal(t, 34, view.Results[0].Risk.Score)
	assert.Equal(t, "MEDIUM", view.Results[0].Risk.Tier)
}

func TestFailOnRisk(t *testing.T) {
	isolate(t)
	code, _, _ := runCLI(t, "--text", "SSN 123-45-6789", "--exposure", "public", "--fail-on-risk")
	assert.Equal(t, exitRisk, code)

	code, _, _ = runCLI(t, "--text", "SSN 123-45-6789", "--fail-on-risk")
	assert.Equal(t, exitOK, code)
}

func TestUnknownExposure(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "--text", "x", "--exposure", "galactic")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "unknown exposure")
}

func TestConfidenceOutOfRange(t *testing.T) {
	isolate(t)
	for _, args := range [][]string{
		{"--text", "x", "--confidence", "7"},
		{"--text", "x", "--min-confidence=-0.1"},
		{"--text", "x", "--min-confidence", "1.5"},
	} {
		code, out, stderr := runCLI(t, args...)
		assert.Equal(t, exitError, code, "%v", args)
		assert.Contains(t, stderr, "must be between 0 and 1", "%v", args)
		assert.Empty(t, out)
	}

	code, _, _ := runCLI(t, "--text", "x", "--confidence", "1", "--min-confidence", "0")
	assert.Equal(t, exitOK, code)
}

func TestNoContextFlag(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--text", "write to user@example.com", "--format", "json")
	require.Equal(t, exitOK, code)
	var view shared.ReportView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Empty(t, view.Results[0].Findings)
	assert.Equal(t, 1, view.Results[0].Suppressed)

	code, out, _ = runCLI(t, "--text", "write to user@example.com", "--format", "json", "--no-context")
	require.Equal(t, exitOK, code)
	view = shared.ReportView{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Results[0].Findings, 1)
}

func TestMissingInput(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "--file or --text is required")

	code, _, _ = runCLI(t, "--file", "a.txt", "--text", "b")
	assert.Equal(t, exitError, code)
}

func TestScanFilesToOutput(t *testing.T) {
	dir := isolate(t)
	input := filepath.Join(dir, "records.txt")
	require.NoError(t, os.WriteFile(input, []byte("card 4532015112830366\n"), 0600))
	output := filepath.Join(dir, "out", "report.csv")

	code, stdout, _ := runCLI(t, "--file", input, "--format", "csv", "--output", output)
	require.Equal(t, exitOK, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CREDIT_CARD")
	assert.NotContains(t, string(data), "4532015112830366")

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAllFilesFailed(t *testing.T) {
	dir := isolate(t)
	code, out, _ := runCLI(t, "--file", filepath.Join(dir, "missing.txt"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, out, "Error (not_found)")
}

func TestValidate(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "--validate", "luhn", "--format", "json", "4532015112830366", "4532015112830367")
	require.Equal(t, exitOK, code)

	var rows []struct {
		Value string `json:"value"`
		Valid bool   `json:"valid"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.True(t, rows[0].Valid)
	assert.False(t, rows[1].Valid)

	code, _, stderr := runCLI(t, "--validate", "nope", "1")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "unknown checksum validator")
}

func TestConfigProfile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
defaults:
  include_builtin: false
patterns:
  - name: employee_id
    regex: 'EMP-\d{6}'
    entity_type: EMPLOYEE_ID
    confidence: 0.9
profiles:
  loud:
    format: json
`), 0600))

	code, out, _ := runCLI(t, "--config", cfgPath, "--profile", "loud", "--text", "badge EMP-123456")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, `"EMPLOYEE_ID": 1`)

	code, _, stderr := runCLI(t, "--config", cfgPath, "--profile", "missing", "--text", "x")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "profile")

	code, _, _ = runCLI(t, "--config", filepath.Join(dir, "absent.yaml"), "--text", "x")
	assert.Equal(t, exitError, code)
}

func TestListings(t *testing.T) {
	isolate(t)
	for _, flag := range []string{"--list-validators", "--list-patterns", "--list-profiles", "--list-formats", "--list-rules", "--help"} {
		code, out, _ := runCLI(t, flag)
		assert.Equal(t, exitOK, code, flag)
		assert.NotEmpty(t, out, flag)
	}

	code, _, _ := runCLI(t, "--describe", "NOT_A_TYPE")
	assert.Equal(t, exitError, code)
}
