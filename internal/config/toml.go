// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/greenfly/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Model      ModelConfig      `toml:"model"`
	Validation ValidationConfig `toml:"validation"`
	Logging    LoggingConfig    `toml:"logging"`
	Archive    ArchiveConfig    `toml:"archive"`
}

// ModelConfig maps default starting options. Unset keys leave the option empty.
type ModelConfig struct {
	StartingJuveniles    *int     `toml:"juveniles"`
	StartingAdults       *int     `toml:"adults"`
	StartingSeniles      *int     `toml:"seniles"`
	Generations          *int     `toml:"generations"`
	JuvenileSurvivalRate *float64 `toml:"juvenile-survival"`
	AdultSurvivalRate    *float64 `toml:"adult-survival"`
	SenileSurvivalRate   *float64 `toml:"senile-survival"`
	AdultBirthRate       *float64 `toml:"birth-rate"`
	DiseaseTrigger       *int     `toml:"trigger"`
}

// ValidationConfig maps the allowed generation range.
type ValidationConfig struct {
	MinGenerations *int `toml:"min-generations"`
	MaxGenerations *int `toml:"max-generations"`
}

// LoggingConfig maps log settings.
type LoggingConfig struct {
	Level *string `toml:"level"`
}

// ArchiveConfig maps run archive settings.
type ArchiveConfig struct {
	AutoSave *bool   `toml:"auto-save"`
	DBPath   *string `toml:"db-path"`
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

// Complete reports whether every starting option is set.
func (c ModelConfig) Complete() bool {
	return c.StartingJuveniles != nil &&
		c.StartingAdults != nil &&
		c.StartingSeniles != nil &&
		c.Generations != nil &&
		c.JuvenileSurvivalRate != nil &&
		c.AdultSurvivalRate != nil &&
		c.SenileSurvivalRate != nil &&
		c.AdultBirthRate != nil &&
		c.DiseaseTrigger != nil
}

// Apply overlays the set keys onto opts.
func (c ModelConfig) Apply(opts *model.Options) {
	if c.StartingJuveniles != nil {
		opts.StartingJuveniles = *c.StartingJuveniles
	}
	if c.StartingAdults != nil {
		opts.StartingAdults = *c.StartingAdults
	}
	if c.StartingSeniles != nil {
		opts.StartingSeniles = *c.StartingSeniles
	}
	if c.Generations != nil {
		opts.Generations = *c.Generations
	}
	if c.JuvenileSurvivalRate != nil {
		opts.JuvenileSurvivalRate = *c.JuvenileSurvivalRate
	}
	if c.AdultSurvivalRate != nil {
		opts.AdultSurvivalRate = *c.AdultSurvivalRate
	}
	if c.SenileSurvivalRate != nil {
		opts.SenileSurvivalRate = *c.SenileSurvivalRate
	}
	if c.AdultBirthRate != nil {
		opts.AdultBirthRate = *c.AdultBirthRate
	}
	if c.DiseaseTrigger != nil {
		opts.DiseaseTrigger = *c.DiseaseTrigger
	}
}

// Bounds returns the generation range, falling back to the given defaults.
func (c ValidationConfig) Bounds(defMin, defMax int) (int, int) {
	minGen, maxGen := defMin, defMax
	if c.MinGenerations != nil {
		minGen = *c.MinGenerations
	}
	if c.MaxGenerations != nil {
		maxGen = *c.MaxGenerations
	}
	return minGen, maxGen
}
