// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/inspection-reports/internal/assembly"
)

// Config represents the CLI configuration that can be loaded from a JSON or
// YAML file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`   // On-device SQLite file

	// Server
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`

	// Report
	Locale        string           `json:"locale,omitempty" yaml:"locale,omitempty"`           // BCP 47 tag for number formatting
	DateLayout    string           `json:"date_layout,omitempty" yaml:"date_layout,omitempty"` // Go time layout for date fields
	LaTeXTemplate string           `json:"latex_template,omitempty" yaml:"latex_template,omitempty"`
	LaTeXFont     string           `json:"latex_font,omitempty" yaml:"latex_font,omitempty"`
	EmbedImages   bool             `json:"embed_images,omitempty" yaml:"embed_images,omitempty"` // Embed image files in XLSX output
	Labels        *assembly.Labels `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Behavior
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"` // debug, info, warn or error
	Verbose  bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`     // Print report summaries
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ListenAddr: ":8080",
		Locale:     "he",
		DateLayout: "02/01/2006",
		LogLevel:   "info",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension. Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("config error: 'database_url' and 'sqlite_path' are mutually exclusive")
	}

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return fmt.Errorf("config error: invalid locale %q: %w", c.Locale, err)
		}
	}

	if c.LogLevel != "" {
		if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
			return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
		}
	}

	// Validate file paths exist (if specified)
	if c.LaTeXTemplate != "" {
		if _, err := os.Stat(c.LaTeXTemplate); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.LaTeXTemplate)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" && result.SQLitePath == "" {
		result.DatabaseURL = defaults.DatabaseURL
		result.SQLitePath = defaults.SQLitePath
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.DateLayout == "" {
		result.DateLayout = defaults.DateLayout
	}
	if result.LaTeXTemplate == "" {
		result.LaTeXTemplate = defaults.LaTeXTemplate
	}
	if result.LaTeXFont == "" {
		result.LaTeXFont = defaults.LaTeXFont
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.Labels == nil {
		result.Labels = defaults.Labels
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LocaleTag returns the parsed locale, Hebrew when unset or invalid.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil || c.Locale == "" {
		return language.Hebrew
	}
	return tag
}

// AssemblyOptions builds report assembly options from the configuration.
func (c *Config) AssemblyOptions(logger *slog.Logger) assembly.Options {
	opts := assembly.Options{
		Locale:     c.LocaleTag(),
		DateLayout: c.DateLayout,
		Logger:     logger,
	}
	if c.Labels != nil {
		opts.Labels = *c.Labels
	}
	return opts
}

var logLevels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, Info when unset or unknown.
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}
