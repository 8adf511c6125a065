package config

import (
	"fmt"

	"github.com/sup9097/table-dice-app/internal/model"
	"github.com/sup9097/table-dice-app/internal/table"
)

// Built-in defaults.
const (
	DefaultTop        = 2
	DefaultEstimators = 100
	DefaultSeed       = 42
	DefaultSimCount   = 100
)

// Defaults returns the built-in settings.
func Defaults() model.Settings {
	return model.Settings{
		DataDir:    DefaultDataDir(),
		Backend:    model.BackendFiles,
		Table:      string(table.Default),
		Top:        DefaultTop,
		Estimators: DefaultEstimators,
		Seed:       DefaultSeed,
		SimCount:   DefaultSimCount,
	}
}

// Resolve layers the config file at path and the environment over the
// built-in defaults. Flags are applied by the caller.
func Resolve(path string) (model.Settings, error) {
	s := Defaults()
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return model.Settings{}, err
	}
	fileCfg.Apply(&s)
	envCfg, err := LoadEnv()
	if err != nil {
		return model.Settings{}, err
	}
	envCfg.Apply(&s)
	return s, nil
}

// Validate checks resolved settings.
func Validate(s model.Settings) error {
	if s.DataDir == "" {
		return fmt.Errorf("data-dir must not be empty")
	}
	switch s.Backend {
	case model.BackendFiles, model.BackendSQLite:
	default:
		return fmt.Errorf("backend must be %q or %q", model.BackendFiles, model.BackendSQLite)
	}
	if _, err := table.Parse(s.Table); err != nil {
		return err
	}
	if s.Top <= 0 {
		return fmt.Errorf("top must be > 0")
	}
	if s.Estimators <= 0 {
		return fmt.Errorf("estimators must be > 0")
	}
	if s.SimCount <= 0 {
		return fmt.Errorf("sim-count must be > 0")
	}
	return nil
}

// Template returns the commented config file written by `tabledice config`.
func Template() string {
	return fmt.Sprintf(`# tabledice configuration
# Uncomment a value to enable it. TABLEDICE_* variables and CLI flags override
# config values.

[data]
# dir = %q
# backend = %q            # "files" or "sqlite"

[predict]
# table = %q                  # Table selected at startup
# top = %d                      # Frequency predictions to show
# estimators = %d             # Trees per forest
# seed = %d                    # Forest and split seed
# sim-count = %d              # Rolls added by simulate
`,
		DefaultDataDir(),
		model.BackendFiles,
		table.Default,
		DefaultTop,
		DefaultEstimators,
		DefaultSeed,
		DefaultSimCount,
	)
}
