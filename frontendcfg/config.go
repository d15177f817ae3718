// Package frontendcfg defines the Driver's optional TOML-loaded
// configuration (SPEC_FULL.md §4).
package frontendcfg

import (
	"github.com/pelletier/go-toml/v2"
)

// Config tunes the pipeline's soft limits and ambient behavior without
// changing its semantics: every field has a safe default matching
// spec.md's unbounded/default behavior.
type Config struct {
	// MaxDiagnosticsPerStage caps the number of diagnostics kept per
	// stage (0 = unbounded, the spec.md default).
	MaxDiagnosticsPerStage int `toml:"max_diagnostics_per_stage"`
	// SuggestionEditDistance bounds the Levenshtein distance considered
	// for a "did you mean X?" keyword hint.
	SuggestionEditDistance int `toml:"suggestion_edit_distance"`
	// ReservedWords additively extends the built-in reserved-word set,
	// for embedders targeting a slightly different SQL dialect surface.
	ReservedWords []string `toml:"reserved_words"`
	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string `toml:"log_level"`
}

// Default returns the spec-mandated defaults: unbounded diagnostics,
// edit distance 2, no additional reserved words, warn-level logging.
func Default() *Config {
	return &Config{
		MaxDiagnosticsPerStage: 0,
		SuggestionEditDistance: 2,
		LogLevel:               "warn",
	}
}

// Load parses TOML text into a Config seeded with Default()'s values,
// so a partial document only overrides what it names.
func Load(text string) (*Config, error) {
	cfg := Default()
	if text == "" {
		return cfg, nil
	}
	if err := toml.Unmarshal([]byte(text), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
