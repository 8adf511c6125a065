package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/stats"
	"github.com/sup9097/table-dice-app/internal/table"
)

const helpText = `Commands:
 t [TABLE]   select a table (lists tables without an argument)
 i DIGITS    enter rolls, e.g. 123456, then retrain and forecast
 s [COUNT]   add simulated rolls
 p           frequency forecast
 m           train the model
 a           correlation, held-out accuracy and table sweep
 u           undo the last roll
 r           clear the table in memory
 c           copy the table to its simulation table
 v           table summary and totals histogram
 h           help
 q           quit`

// execute runs one console command line and returns its output. quit reports
// whether the console should exit.
func (m *Model) execute(ctx context.Context, line string) (string, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	var buf bytes.Buffer
	var err error
	switch cmd {
	case "q":
		return "", true, nil
	case "h":
		buf.WriteString(helpText)
	case "t":
		err = m.selectTable(ctx, &buf, args)
	case "i":
		err = m.observe(ctx, &buf, args)
	case "s":
		err = m.simulate(ctx, &buf, args)
	case "p":
		err = stats.RenderForecast(&buf, m.p.PredictFrequency(m.settings.Top), nil, [3]learn.Distribution{})
	case "m":
		err = m.train(ctx, &buf)
	case "a":
		err = m.analyze(&buf)
	case "u":
		removed, uerr := m.p.Undo(ctx)
		if uerr != nil {
			return "", false, uerr
		}
		fmt.Fprintf(&buf, "Removed %s.", removed)
	case "r":
		m.p.Reset()
		fmt.Fprintf(&buf, "Cleared %s.", m.p.Current())
	case "c":
		twin, cerr := m.p.CopyToSimulation(ctx)
		if cerr != nil {
			return "", false, cerr
		}
		fmt.Fprintf(&buf, "Copied %s into %s (%d rolls).", m.p.Current(), twin, len(m.p.History(twin)))
	case "v":
		t := m.p.Current()
		h := m.p.History(t)
		if err = stats.RenderSummary(&buf, t, h, m.settings.Top, stats.DefaultWindow); err == nil {
			err = stats.RenderHistogram(&buf, h, m.width)
		}
	default:
		return "", false, fmt.Errorf("unknown command %q, use one of t/i/s/p/m/a/u/r/c/v/h/q", cmd)
	}
	return strings.TrimRight(buf.String(), "\n"), false, err
}

func (m *Model) selectTable(ctx context.Context, buf *bytes.Buffer, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(buf, "Tables: %s", strings.Join(table.Strings(), ", "))
		return nil
	}
	if err := m.p.SelectTable(ctx, args[0]); err != nil {
		return err
	}
	t := m.p.Current()
	fmt.Fprintf(buf, "Selected %s (%d rolls).", t, len(m.p.History(t)))
	return nil
}

func (m *Model) observe(ctx context.Context, buf *bytes.Buffer, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: i DIGITS")
	}
	obs, err := m.p.Observe(ctx, strings.Join(args, ""), m.settings.Top)
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "Added %d rolls to %s.\n", len(obs.Appended), obs.Table)
	if obs.Comparison != nil {
		if err := stats.RenderComparison(buf, *obs.Comparison); err != nil {
			return err
		}
		if err := stats.RenderAccuracy(buf, m.p.Accuracy()); err != nil {
			return err
		}
	}
	if err := stats.RenderForecast(buf, obs.Frequency, obs.Prediction, obs.Probabilities); err != nil {
		return err
	}
	if obs.TrainErr != nil {
		fmt.Fprintf(buf, "Model not trained: %v\n", obs.TrainErr)
		return nil
	}
	attempts, err := m.p.CheckConfidence()
	if err != nil {
		return err
	}
	return stats.RenderConfidence(buf, attempts)
}

func (m *Model) simulate(ctx context.Context, buf *bytes.Buffer, args []string) error {
	count := m.settings.SimCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[0])
		}
		count = n
	}
	rolls, err := m.p.Simulate(ctx, count)
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "Added %d simulated rolls to %s.", len(rolls), m.p.Current())
	return nil
}

func (m *Model) train(ctx context.Context, buf *bytes.Buffer) error {
	if err := m.p.Train(ctx); err != nil {
		return err
	}
	t := m.p.Current()
	fmt.Fprintf(buf, "Trained %s on %d rolls.\n", t, len(m.p.History(t)))
	pred, dists, err := m.p.PredictNext()
	if err != nil {
		return err
	}
	return stats.RenderForecast(buf, m.p.PredictFrequency(m.settings.Top), &pred, dists)
}

func (m *Model) analyze(buf *bytes.Buffer) error {
	t := m.p.Current()
	matrix, err := m.p.Correlation("")
	switch {
	case errors.Is(err, stats.ErrInsufficientData):
		fmt.Fprintf(buf, "Not enough rolls for correlation on %s.\n", t)
	case err != nil:
		return err
	default:
		if err := stats.RenderCorrelation(buf, t, matrix); err != nil {
			return err
		}
	}
	ev, err := m.p.Evaluate()
	switch {
	case errors.Is(err, learn.ErrInsufficientData):
		fmt.Fprintf(buf, "Not enough rolls for evaluation on %s.\n", t)
	case err != nil:
		return err
	default:
		if err := stats.RenderEvaluation(buf, ev); err != nil {
			return err
		}
	}
	if err := stats.RenderSweep(buf, m.p.CorrelationSweep()); err != nil {
		return err
	}
	return stats.RenderAccuracy(buf, m.p.Accuracy())
}
