package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sup9097/table-dice-app/internal/console"
	"github.com/sup9097/table-dice-app/internal/export"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/stats"
	"github.com/sup9097/table-dice-app/internal/table"
)

var (
	flagSimCount  int
	flagTrainAll  bool
	flagCorrAll   bool
	flagFormat    string
	flagHistWidth int
)

// withSession opens a session for one command and closes it afterwards.
func withSession(run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()
		return run(cmd, args, s)
	}
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start the interactive console",
		Args:  cobra.NoArgs,
		RunE:  runConsoleCmd,
	}
}

func runConsoleCmd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()
	program := tea.NewProgram(console.NewModel(s.p, settings), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run console: %w", err)
	}
	return nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add DIGITS...",
		Short: "Append rolls given as digit triples, e.g. 123456",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			rolls, err := s.p.AppendRolls(cmd.Context(), strings.Join(args, ""))
			if err != nil {
				return err
			}
			t := s.p.Current()
			return writef(cmd.OutOrStdout(), "Added %d rolls to %s (%d total).\n", len(rolls), t, len(s.p.History(t)))
		}),
	}
}

func newObserveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "observe DIGITS...",
		Short: "Append rolls, retrain and forecast the next roll",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			obs, err := s.p.Observe(cmd.Context(), strings.Join(args, ""), settings.Top)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := writef(out, "Added %d rolls to %s.\n", len(obs.Appended), obs.Table); err != nil {
				return err
			}
			if obs.Comparison != nil {
				if err := stats.RenderComparison(out, *obs.Comparison); err != nil {
					return err
				}
			}
			if err := stats.RenderForecast(out, obs.Frequency, obs.Prediction, obs.Probabilities); err != nil {
				return err
			}
			if obs.TrainErr != nil {
				return writef(out, "Model not trained: %v\n", obs.TrainErr)
			}
			attempts, err := s.p.CheckConfidence()
			if err != nil {
				return err
			}
			return stats.RenderConfidence(out, attempts)
		}),
	}
}

func newUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Remove the most recent roll",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			removed, err := s.p.Undo(cmd.Context())
			if err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "Removed %s from %s.\n", removed, s.p.Current())
		}),
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the table and delete its shards",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			s.p.Reset()
			removed, err := s.p.Purge(cmd.Context())
			if err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "Cleared %s and deleted %d shards.\n", s.p.Current(), len(removed))
		}),
	}
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the model and report what it learned from",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			out := cmd.OutOrStdout()
			if flagTrainAll {
				trained, err := s.p.TrainAll(cmd.Context())
				if err != nil {
					return err
				}
				if len(trained) == 0 {
					return writef(out, "No table has %d or more rolls.\n", learn.MinTrainRows)
				}
				for _, t := range trained {
					if err := writef(out, "Trained %s on %d rolls.\n", t, len(s.p.History(t))); err != nil {
						return err
					}
				}
				return nil
			}
			if err := s.p.Train(cmd.Context()); err != nil {
				return err
			}
			t := s.p.Current()
			return writef(out, "Trained %s on %d rolls.\n", t, len(s.p.History(t)))
		}),
	}
	cmd.Flags().BoolVar(&flagTrainAll, "all", false, "train every table with enough rolls")
	return cmd
}

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Forecast the next roll",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			out := cmd.OutOrStdout()
			freq := s.p.PredictFrequency(settings.Top)
			if err := s.p.Train(cmd.Context()); err != nil {
				if !errors.Is(err, learn.ErrInsufficientData) {
					return err
				}
				if err := stats.RenderForecast(out, freq, nil, [3]learn.Distribution{}); err != nil {
					return err
				}
				return writef(out, "Model not trained: %v\n", err)
			}
			pred, dists, err := s.p.PredictNext()
			if err != nil {
				return err
			}
			return stats.RenderForecast(out, freq, &pred, dists)
		}),
	}
}

func newEvaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Score a model on a held-out 30% split",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			ev, err := s.p.Evaluate()
			if err != nil {
				return err
			}
			return stats.RenderEvaluation(cmd.OutOrStdout(), ev)
		}),
	}
}

func newCorrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corr [TABLE]",
		Short: "Show position correlation",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			out := cmd.OutOrStdout()
			if flagCorrAll {
				return stats.RenderSweep(out, s.p.CorrelationSweep())
			}
			t := s.p.Current()
			if len(args) == 1 {
				parsed, err := table.Parse(args[0])
				if err != nil {
					return err
				}
				t = parsed
			}
			m, err := s.p.Correlation(string(t))
			if err != nil {
				return err
			}
			return stats.RenderCorrelation(out, t, m)
		}),
	}
	cmd.Flags().BoolVar(&flagCorrAll, "all", false, "score every table with enough rolls")
	return cmd
}

func newCopySimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-sim",
		Short: "Append the table's rolls to its simulation table",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			twin, err := s.p.CopyToSimulation(cmd.Context())
			if err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "Copied %s into %s (%d rolls).\n", s.p.Current(), twin, len(s.p.History(twin)))
		}),
	}
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Append random rolls of fair dice",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			rolls, err := s.p.Simulate(cmd.Context(), settings.SimCount)
			if err != nil {
				return err
			}
			return writef(cmd.OutOrStdout(), "Added %d simulated rolls to %s.\n", len(rolls), s.p.Current())
		}),
	}
	cmd.Flags().IntVar(&flagSimCount, "count", 0, "rolls to add (default from config, 100)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a table summary and totals histogram",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			out := cmd.OutOrStdout()
			t := s.p.Current()
			h := s.p.History(t)
			if err := stats.RenderSummary(out, t, h, settings.Top, stats.DefaultWindow); err != nil {
				return err
			}
			if err := stats.RenderHistogram(out, h, flagHistWidth); err != nil {
				return err
			}
			return stats.RenderAccuracy(out, s.p.Accuracy())
		}),
	}
	cmd.Flags().IntVar(&flagHistWidth, "width", 0, "histogram width (default: terminal width)")
	return cmd
}

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables with their kind and roll count",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			current := s.p.Current()
			for _, t := range table.All {
				marker := " "
				if t == current {
					marker = "*"
				}
				if err := writef(cmd.OutOrStdout(), "%s %-8s %-10s %d\n", marker, t, t.Kind(), len(s.p.History(t))); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newShardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shards",
		Short: "List persisted shards",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			refs, err := s.p.Shards(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				return writef(out, "No shards in %s.\n", settings.DataDir)
			}
			for _, ref := range refs {
				saved := "unknown"
				if !ref.SavedAt.IsZero() {
					saved = humanize.Time(ref.SavedAt)
				}
				if err := writef(out, "%-36s %-8s %8s  %s\n", ref.Name, ref.Table, humanize.Bytes(uint64(ref.Size)), saved); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every table history to stdout",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			exp := export.Build(s.p.Histories(), time.Now())
			return export.Write(cmd.OutOrStdout(), exp, flagFormat)
		}),
	}
	cmd.Flags().StringVar(&flagFormat, "format", export.FormatJSON, "json or yaml")
	return cmd
}
