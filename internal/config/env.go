package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/sup9097/table-dice-app/internal/model"
)

// EnvConfig holds TABLEDICE_* overrides. Unset variables stay nil.
type EnvConfig struct {
	DataDir    *string `env:"TABLEDICE_DATA_DIR"`
	Backend    *string `env:"TABLEDICE_BACKEND"`
	Table      *string `env:"TABLEDICE_TABLE"`
	Top        *int    `env:"TABLEDICE_TOP"`
	Estimators *int    `env:"TABLEDICE_ESTIMATORS"`
	Seed       *int64  `env:"TABLEDICE_SEED"`
	SimCount   *int    `env:"TABLEDICE_SIM_COUNT"`
	Verbose    *bool   `env:"TABLEDICE_VERBOSE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses the TABLEDICE_* variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := ParseEnv(&cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Apply copies every set value onto s.
func (c EnvConfig) Apply(s *model.Settings) {
	setString(&s.DataDir, c.DataDir)
	setString(&s.Backend, c.Backend)
	setString(&s.Table, c.Table)
	setInt(&s.Top, c.Top)
	setInt(&s.Estimators, c.Estimators)
	setInt64(&s.Seed, c.Seed)
	setInt(&s.SimCount, c.SimCount)
	setBool(&s.Verbose, c.Verbose)
}
