// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"risklens/internal/patterns"
	"risklens/internal/resilience"
	"risklens/internal/scoring"
)

// Defaults holds the settings applied when no flag or profile overrides them
type Defaults struct {
	Exposure       string  `yaml:"exposure"`
	Confidence     float64 `yaml:"confidence"`
	Format         string  `yaml:"format"`
	MinConfidence  float64 `yaml:"min_confidence"`
	IncludeBuiltin bool    `yaml:"include_builtin"`
	Workers        int     `yaml:"workers"`
	NoColor        bool    `yaml:"no_color"`
	Verbose        bool    `yaml:"verbose"`
	Debug          bool    `yaml:"debug"`
}

// Config represents the application configuration
type Config struct {
	// Additional catalog entries, appended after the built-in catalog
	Patterns []patterns.PatternSpec `yaml:"patterns"`

	Defaults Defaults `yaml:"defaults"`

	// Profiles for different scanning scenarios
	Profiles map[string]Profile `yaml:"profiles"`

	// Context rules applied around each candidate before overlap resolution
	Context ContextConfig `yaml:"context"`
}

// ContextConfig extends the built-in context rules
type ContextConfig struct {
	Disabled bool                `yaml:"disabled"`
	Hotwords []HotwordSpec       `yaml:"hotwords"`
	Deny     map[string][]string `yaml:"deny"` // entity type -> exact values to drop
}

// HotwordSpec adjusts confidence when Pattern matches near a candidate. Before
// and After are window sizes in bytes; zero disables that side.
type HotwordSpec struct {
	Name        string   `yaml:"name"`
	EntityTypes []string `yaml:"entity_types"`
	Pattern     string   `yaml:"pattern"`
	Delta       float64  `yaml:"delta"`
	Before      int      `yaml:"before"`
	After       int      `yaml:"after"`
}

// Profile overrides defaults for a named scenario. Empty and zero fields leave
// the defaults untouched.
type Profile struct {
	Description   string                 `yaml:"description"`
	Exposure      string                 `yaml:"exposure"`
	Confidence    float64                `yaml:"confidence"`
	Format        string                 `yaml:"format"`
	MinConfidence float64                `yaml:"min_confidence"`
	Workers       int                    `yaml:"workers"`
	NoColor       bool                   `yaml:"no_color"`
	Verbose       bool                   `yaml:"verbose"`
	Patterns      []patterns.PatternSpec `yaml:"patterns"`
}

// defaultConfig returns the configuration used when no file is found
func defaultConfig() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Exposure = "PRIVATE"
	config.Defaults.Confidence = 0.85
	config.Defaults.Format = "text"
	config.Defaults.MinConfidence = 0
	config.Defaults.IncludeBuiltin = true

	config.Profiles["ci"] = Profile{
		Description:   "Machine-readable output for pipelines, high-confidence findings only",
		Format:        "json",
		MinConfidence: 0.8,
		NoColor:       true,
	}
	config.Profiles["public"] = Profile{
		Description: "Score content as if it were published",
		Exposure:    "PUBLIC",
	}

	return config
}

// LoadConfig loads configuration from the specified file path
func LoadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	defaultIncludeBuiltin := config.Defaults.IncludeBuiltin

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, resilience.NewConfigError("error parsing config file", err)
	}

	// Unmarshal leaves a missing bool false; restore the default unless the file set it
	if !containsField(data, "defaults", "include_builtin") {
		config.Defaults.IncludeBuiltin = defaultIncludeBuiltin
	}
	config.Defaults.Exposure = strings.ToUpper(config.Defaults.Exposure)

	if err := ValidateConfig(config); err != nil {
		return nil, resilience.NewConfigError("configuration validation failed", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configFile, or searches standard locations when it
// is empty. Any failure falls back to the default configuration; the error is
// returned alongside so callers can report it.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = defaultConfig()
		return cfg, err
	}
	return cfg, nil
}

// FindConfigFile looks for a configuration file in standard locations
func FindConfigFile() string {
	for _, name := range []string{"risklens.yaml", "risklens.yml", ".risklens.yaml", ".risklens.yml"} {
		if fileExists(name) {
			return name
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeConfig := filepath.Join(home, ".risklens.yaml")
	if fileExists(homeConfig) {
		return homeConfig
	}

	// XDG config directory
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	xdgConfigFile := filepath.Join(xdgConfig, "risklens", "config.yaml")
	if fileExists(xdgConfigFile) {
		return xdgConfigFile
	}

	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile merges the named profile over the defaults
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return resilience.NewConfigError(fmt.Sprintf("profile %q not found (available: %s)",
			name, strings.Join(c.ListProfiles(), ", ")), nil)
	}

	if profile.Exposure != "" {
		c.Defaults.Exposure = strings.ToUpper(profile.Exposure)
	}
	if profile.Confidence > 0 {
		c.Defaults.Confidence = profile.Confidence
	}
	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.MinConfidence > 0 {
		c.Defaults.MinConfidence = profile.MinConfidence
	}
	if profile.Workers > 0 {
		c.Defaults.Workers = profile.Workers
	}
	if profile.NoColor {
		c.Defaults.NoColor = true
	}
	if profile.Verbose {
		c.Defaults.Verbose = true
	}
	c.Patterns = append(c.Patterns, profile.Patterns...)

	return ValidateConfig(c)
}

// Catalog returns the pattern set to compile: the built-in catalog when
// enabled, followed by the configured patterns
func (c *Config) Catalog() []patterns.PatternSpec {
	var specs []patterns.PatternSpec
	if c.Defaults.IncludeBuiltin {
		specs = patterns.Builtin()
	}
	return append(specs, c.Patterns...)
}

// ValidateConfig checks the settings that would otherwise fail late. Pattern
// entries are not checked here: a bad entry is skipped at compile time.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	d := config.Defaults
	if d.Exposure != "" && !isKnownExposure(d.Exposure) {
		return fmt.Errorf("unknown exposure %q (expected one of %s)", d.Exposure, strings.Join(scoring.Exposures(), ", "))
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", d.Confidence)
	}
	if d.MinConfidence < 0 || d.MinConfidence > 1 {
		return fmt.Errorf("min_confidence %v outside [0,1]", d.MinConfidence)
	}
	if d.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", d.Workers)
	}

	for name, profile := range config.Profiles {
		if profile.Exposure != "" && !isKnownExposure(profile.Exposure) {
			return fmt.Errorf("profile '%s': unknown exposure %q", name, profile.Exposure)
		}
		if profile.Confidence < 0 || profile.Confidence > 1 {
			return fmt.Errorf("profile '%s': confidence %v outside [0,1]", name, profile.Confidence)
		}
	}

	for i, h := range config.Context.Hotwords {
		if err := validateHotword(h); err != nil {
			return fmt.Errorf("context hotword %d (%s): %w", i, h.Name, err)
		}
	}

	if len(config.Catalog()) == 0 {
		return fmt.Errorf("no patterns: include_builtin is false and no patterns are configured")
	}

	return nil
}

func validateHotword(h HotwordSpec) error {
	if _, err := regexp.Compile(h.Pattern); err != nil {
		return err
	}
	if h.Delta < -1 || h.Delta > 1 || h.Delta == 0 {
		return fmt.Errorf("delta %v must be non-zero and within [-1,1]", h.Delta)
	}
	if h.Before < 0 || h.After < 0 {
		return fmt.Errorf("window sizes must not be negative")
	}
	if h.Before == 0 && h.After == 0 {
		return fmt.Errorf("before or after window is required")
	}
	return nil
}

func isKnownExposure(exposure string) bool {
	upper := strings.ToUpper(exposure)
	for _, e := range scoring.Exposures() {
		if e == upper {
			return true
		}
	}
	return false
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			_, exists := current[key]
			return exists
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}
