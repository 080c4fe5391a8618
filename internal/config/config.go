// Package config loads the optional TOML run configuration for the
// shuffleplan CLI, following the same load-a-small-TOML-file pattern
// this codebase's lineage uses for its own node configuration.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the optional run configuration for cmd/shuffleplan.
type Config struct {
	Planner PlannerConfig `toml:"planner"`
}

// PlannerConfig toggles planner behavior that isn't part of its
// semantics: diagnostics only.
type PlannerConfig struct {
	StrictInvariants bool   `toml:"strict_invariants"`
	LogLevel         string `toml:"log_level"`
}

// Default returns the configuration used when no --config file is given.
func Default() Config {
	return Config{Planner: PlannerConfig{StrictInvariants: false, LogLevel: "info"}}
}

// Load reads and parses a TOML config file.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
	}
	return cfg, nil
}
