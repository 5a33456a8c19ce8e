// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"risklens/internal/patterns"
	"risklens/internal/resilience"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "risklens.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfigOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := LoadConfigOrDefault("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format to be text, got %q", cfg.Defaults.Format)
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	cfg, err := LoadConfigOrDefault("/nonexistent/path/risklens.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
	if err == nil {
		t.Error("expected the read error to be reported")
	}
	if resilience.TypeOf(err) != resilience.ErrorTypeResourceNotFound {
		t.Errorf("expected resource_not_found, got %v", resilience.TypeOf(err))
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
defaults:
  format: json
  exposure: internal
  confidence: 0.9
  min_confidence: 0.5
patterns:
  - name: EMPLOYEE_ID
    regex: 'EMP-\d{6}'
    entity_type: EMPLOYEE_ID
    confidence: 0.8
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" {
		t.Errorf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Defaults.Exposure != "INTERNAL" {
		t.Errorf("expected exposure to be upper-cased, got %q", cfg.Defaults.Exposure)
	}
	if !cfg.Defaults.IncludeBuiltin {
		t.Error("include_builtin should stay true when the file does not set it")
	}
	if len(cfg.Patterns) != 1 || cfg.Patterns[0].Regex != `EMP-\d{6}` {
		t.Fatalf("unexpected patterns: %+v", cfg.Patterns)
	}

	catalog := cfg.Catalog()
	if len(catalog) != len(patterns.Builtin())+1 {
		t.Errorf("expected builtin catalog plus one entry, got %d", len(catalog))
	}
	if catalog[len(catalog)-1].Name != "EMPLOYEE_ID" {
		t.Errorf("configured patterns should follow the builtin catalog")
	}
}

func TestLoadConfig_IncludeBuiltinFalse(t *testing.T) {
	configPath := writeConfig(t, `
defaults:
  include_builtin: false
patterns:
  - regex: 'EMP-\d{6}'
    entity_type: EMPLOYEE_ID
    confidence: 0.8
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(cfg.Catalog()); got != 1 {
		t.Errorf("expected only the configured pattern, got %d", got)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, ":::invalid yaml:::\n  - [")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if resilience.TypeOf(err) != resilience.ErrorTypeInvalidConfig {
		t.Errorf("expected invalid_config, got %v", resilience.TypeOf(err))
	}

	cfg, err := LoadConfigOrDefault(configPath)
	if cfg == nil || err == nil {
		t.Fatal("expected defaults plus the parse error")
	}
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown exposure", "defaults:\n  exposure: galaxy\n"},
		{"confidence too high", "defaults:\n  confidence: 1.5\n"},
		{"negative min confidence", "defaults:\n  min_confidence: -0.1\n"},
		{"negative workers", "defaults:\n  workers: -2\n"},
		{"bad profile exposure", "profiles:\n  odd:\n    exposure: everywhere\n"},
		{"empty catalog", "defaults:\n  include_builtin: false\n"},
		{"bad hotword pattern", "context:\n  hotwords:\n    - name: broken\n      pattern: '(unclosed'\n      delta: 0.1\n      before: 10\n"},
		{"zero hotword delta", "context:\n  hotwords:\n    - name: flat\n      pattern: 'x$'\n      before: 10\n"},
		{"hotword without window", "context:\n  hotwords:\n    - name: blind\n      pattern: 'x$'\n      delta: 0.1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			var classified *resilience.ClassifiedError
			if !errors.As(err, &classified) || classified.Type != resilience.ErrorTypeInvalidConfig {
				t.Errorf("expected invalid_config error, got %v", err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Exposure != "PRIVATE" {
		t.Errorf("expected default exposure=PRIVATE, got %q", cfg.Defaults.Exposure)
	}
	if cfg.Defaults.Confidence != 0.85 {
		t.Errorf("expected default confidence=0.85, got %v", cfg.Defaults.Confidence)
	}
	if !cfg.Defaults.IncludeBuiltin {
		t.Error("expected include_builtin=true by default")
	}
}

func TestApplyProfile(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cfg.ApplyProfile("ci"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" || !cfg.Defaults.NoColor || cfg.Defaults.MinConfidence != 0.8 {
		t.Errorf("ci profile not applied: %+v", cfg.Defaults)
	}
	if cfg.Defaults.Exposure != "PRIVATE" {
		t.Errorf("profile without exposure should keep the default, got %q", cfg.Defaults.Exposure)
	}

	if err := cfg.ApplyProfile("missing"); err == nil {
		t.Error("expected an error for an unknown profile")
	}
}

func TestProfilePatternsAreAppended(t *testing.T) {
	configPath := writeConfig(t, `
profiles:
  hr:
    description: HR exports
    patterns:
      - regex: 'EMP-\d{6}'
        entity_type: EMPLOYEE_ID
        confidence: 0.8
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(cfg.Catalog())
	if err := cfg.ApplyProfile("hr"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Catalog()) != before+1 {
		t.Errorf("expected profile pattern to be appended")
	}
}

func TestListProfilesSorted(t *testing.T) {
	cfg, _ := LoadConfig("")
	got := cfg.ListProfiles()
	if len(got) != 2 || got[0] != "ci" || got[1] != "public" {
		t.Errorf("unexpected profiles %v", got)
	}
	if cfg.GetProfile("nope") != nil {
		t.Error("expected nil for unknown profile")
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	if got := FindConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	homeConfig := filepath.Join(home, ".risklens.yaml")
	if err := os.WriteFile(homeConfig, []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != homeConfig {
		t.Errorf("expected %q, got %q", homeConfig, got)
	}

	if err := os.WriteFile(filepath.Join(dir, ".risklens.yaml"), []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != ".risklens.yaml" {
		t.Errorf("expected the project file to win, got %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "risklens.yaml"), []byte("defaults: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != "risklens.yaml" {
		t.Errorf("expected risklens.yaml first, got %q", got)
	}
}

func TestLoadConfig_Context(t *testing.T) {
	configPath := writeConfig(t, `
context:
  hotwords:
    - name: badge label
      entity_types: [EMPLOYEE_ID]
      pattern: '(?i)badge\s*$'
      delta: 0.1
      before: 20
  deny:
    EMAIL: [placeholder@corp.example]
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Context.Disabled {
		t.Error("expected context step to stay enabled")
	}
	if len(cfg.Context.Hotwords) != 1 || cfg.Context.Hotwords[0].Before != 20 {
		t.Errorf("unexpected hotwords: %+v", cfg.Context.Hotwords)
	}
	if got := cfg.Context.Deny["EMAIL"]; len(got) != 1 || got[0] != "placeholder@corp.example" {
		t.Errorf("unexpected deny list: %v", got)
	}
}
