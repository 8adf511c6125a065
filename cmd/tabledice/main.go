// Package main provides the CLI entrypoint for tabledice.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sup9097/table-dice-app/internal/config"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/history"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/model"
	"github.com/sup9097/table-dice-app/internal/predictor"
	"github.com/sup9097/table-dice-app/internal/store"
)

const logFileName = "tabledice.log"

var (
	flagTable      string
	flagDataDir    string
	flagBackend    string
	flagTop        int
	flagEstimators int
	flagSeed       int64
	flagVerbose    bool

	settings model.Settings
	logger   = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.Defaults()
	rootCmd := &cobra.Command{
		Use:   "tabledice",
		Short: "Dice table history and next-roll forecasts",
		Long: `tabledice records three-dice rolls per table and forecasts the next roll
from frequencies and a per-position random forest.

Run without a subcommand to start the interactive console.`,
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupRun,
		PersistentPostRun: func(*cobra.Command, []string) {
			if err := logger.Sync(); err != nil {
				// Best-effort flush; stderr sync fails on some terminals.
				_ = err
			}
		},
		RunE: runConsoleCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&flagTable, "table", "t", defaults.Table, "table to operate on")
	flags.StringVar(&flagDataDir, "data-dir", defaults.DataDir, "shard directory")
	flags.StringVar(&flagBackend, "backend", defaults.Backend, "shard backend: files or sqlite")
	flags.IntVar(&flagTop, "top", defaults.Top, "number of frequency forecasts")
	flags.IntVar(&flagEstimators, "estimators", defaults.Estimators, "trees per forest")
	flags.Int64Var(&flagSeed, "seed", defaults.Seed, "forest and split seed")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newConsoleCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newObserveCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newEvaluateCmd())
	rootCmd.AddCommand(newCorrCmd())
	rootCmd.AddCommand(newCopySimCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newShardsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// setupRun resolves settings as defaults, config file, environment, then
// flags, and builds the logger.
func setupRun(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "config" {
		// The editor must open even when the current file does not validate.
		return nil
	}
	resolved, err := config.Resolve(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringFlag(cmd, "table", &resolved.Table, flagTable)
	applyStringFlag(cmd, "data-dir", &resolved.DataDir, flagDataDir)
	applyStringFlag(cmd, "backend", &resolved.Backend, flagBackend)
	applyIntFlag(cmd, "top", &resolved.Top, flagTop)
	applyIntFlag(cmd, "estimators", &resolved.Estimators, flagEstimators)
	applyInt64Flag(cmd, "seed", &resolved.Seed, flagSeed)
	applyBoolFlag(cmd, "verbose", &resolved.Verbose, flagVerbose)
	if cmd.Flags().Lookup("count") != nil {
		applyIntFlag(cmd, "count", &resolved.SimCount, flagSimCount)
	}
	if err := config.Validate(resolved); err != nil {
		return err
	}
	settings = resolved

	logger, err = buildLogger(settings, isInteractive(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return cmd == cmd.Root() || cmd.Name() == "console"
}

// buildLogger logs warnings to stderr. The console owns the terminal, so it
// logs to a file in the data directory when verbose and not at all otherwise.
func buildLogger(s model.Settings, interactive bool) (*zap.Logger, error) {
	if interactive && !s.Verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if s.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if interactive {
		if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
			return nil, err
		}
		cfg.OutputPaths = []string{filepath.Join(s.DataDir, logFileName)}
		cfg.ErrorOutputPaths = cfg.OutputPaths
	}
	return cfg.Build()
}

// session is an opened shard area plus the predictor over it.
type session struct {
	area store.Area
	p    *predictor.Predictor
}

func openSession(ctx context.Context) (*session, error) {
	area, err := openArea(settings)
	if err != nil {
		return nil, err
	}
	hist := history.New(area, logger.Named("history"))
	p, err := predictor.Open(ctx, hist, predictor.Options{
		Learn:     learn.Options{Estimators: settings.Estimators, Seed: settings.Seed},
		Generator: dice.NewGenerator(),
		Logger:    logger.Named("predictor"),
	})
	if err != nil {
		closeArea(area)
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if err := p.SelectTable(ctx, settings.Table); err != nil {
		closeArea(area)
		return nil, err
	}
	return &session{area: area, p: p}, nil
}

func (s *session) close() {
	closeArea(s.area)
}

func openArea(s model.Settings) (store.Area, error) {
	switch s.Backend {
	case model.BackendSQLite:
		area, err := store.OpenSQLite(config.DBPath(s.DataDir))
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		return area, nil
	default:
		area, err := store.OpenFiles(s.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open data directory: %w", err)
		}
		return area, nil
	}
}

func closeArea(area store.Area) {
	if err := area.Close(); err != nil {
		logErrf("failed to close shard area: %v\n", err)
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyInt64Flag(cmd *cobra.Command, name string, target *int64, value int64) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
