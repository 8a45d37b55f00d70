package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"linecheck/internal/types"
)

// DefaultMaxLineLength is the long-line threshold used when none is configured
const DefaultMaxLineLength = 79

// Length modes for the long-line check
const (
	LengthRunes   = "runes"
	LengthColumns = "columns"
)

// EnvConfigPath names the environment variable holding a default config path
const EnvConfigPath = "LINECHECK_CONFIG"

// FileNames are the config files Discover looks for, in order
var FileNames = []string{".linecheck.yaml", ".linecheck.yml", ".linecheck.toml"}

// Config represents the application configuration
type Config struct {
	MaxLineLength int                   `yaml:"max_line_length" toml:"max_line_length"`
	LengthMode    string                `yaml:"length_mode" toml:"length_mode"`
	Builtins      []string              `yaml:"builtins" toml:"builtins"`
	Rules         map[string]RuleConfig `yaml:"rules" toml:"rules"`
}

// RuleConfig represents configuration for a specific rule
type RuleConfig struct {
	Disabled bool   `yaml:"disabled" toml:"disabled"`
	Enabled  bool   `yaml:"enabled" toml:"enabled"`
	Severity string `yaml:"severity" toml:"severity"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		MaxLineLength: DefaultMaxLineLength,
		LengthMode:    LengthRunes,
		Rules:         make(map[string]RuleConfig),
	}
}

// LoadConfig loads configuration from a YAML or TOML file.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &config, nil
}

// Discover walks up from startDir looking for a config file.
// It returns "" when none is found.
func Discover(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

func (c *Config) applyDefaults() {
	if c.MaxLineLength == 0 {
		c.MaxLineLength = DefaultMaxLineLength
	}
	if c.LengthMode == "" {
		c.LengthMode = LengthRunes
	}
	if c.Rules == nil {
		c.Rules = make(map[string]RuleConfig)
	}
}

// Validate checks value ranges. Rule IDs are checked by the rule engine.
func (c *Config) Validate() error {
	if c.MaxLineLength < 1 {
		return fmt.Errorf("max_line_length must be positive, got %d", c.MaxLineLength)
	}
	switch c.LengthMode {
	case LengthRunes, LengthColumns:
	default:
		return fmt.Errorf("length_mode must be %q or %q, got %q", LengthRunes, LengthColumns, c.LengthMode)
	}
	for id, rc := range c.Rules {
		if rc.Severity == "" {
			continue
		}
		if _, err := types.ParseSeverity(rc.Severity); err != nil {
			return fmt.Errorf("rule %s: %w", id, err)
		}
	}
	return nil
}
