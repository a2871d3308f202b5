// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Trial   TrialFileConfig   `toml:"trial"`
	Mapping map[string]string `toml:"mapping"`
}

// TrialFileConfig maps trial-related settings.
type TrialFileConfig struct {
	Stimulus        *string `toml:"stimulus"`
	ButtonLabel     *string `toml:"button-label"`
	RequireResponse *bool   `toml:"require-response"`
	Placeholder     *string `toml:"placeholder"`
	MapFile         *string `toml:"map-file"`
	Jumble          *bool   `toml:"jumble"`
	Seed            *int64  `toml:"seed"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
