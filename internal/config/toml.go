package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/sup9097/table-dice-app/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Data    DataConfig    `toml:"data"`
	Predict PredictConfig `toml:"predict"`
}

// DataConfig maps storage settings.
type DataConfig struct {
	Dir     *string `toml:"dir"`
	Backend *string `toml:"backend"`
}

// PredictConfig maps prediction settings.
type PredictConfig struct {
	Table      *string `toml:"table"`
	Top        *int    `toml:"top"`
	Estimators *int    `toml:"estimators"`
	Seed       *int64  `toml:"seed"`
	SimCount   *int    `toml:"sim-count"`
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

// Apply copies every set value onto s.
func (c FileConfig) Apply(s *model.Settings) {
	setString(&s.DataDir, c.Data.Dir)
	setString(&s.Backend, c.Data.Backend)
	setString(&s.Table, c.Predict.Table)
	setInt(&s.Top, c.Predict.Top)
	setInt(&s.Estimators, c.Predict.Estimators)
	setInt64(&s.Seed, c.Predict.Seed)
	setInt(&s.SimCount, c.Predict.SimCount)
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setInt64(target, value *int64) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}
