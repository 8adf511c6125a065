// Package predictor is the table dice service: it owns every table's history,
// trained model and the session accuracy log, and exposes the operations the
// CLI and console call.
//
// Each table has its own mutex guarding its history and model, so operations
// on different tables may run in parallel. A service-level mutex guards the
// current selection, the model map and the accuracy log.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sup9097/table-dice-app/internal/accuracy"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/forecast"
	"github.com/sup9097/table-dice-app/internal/history"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/stats"
	"github.com/sup9097/table-dice-app/internal/store"
	"github.com/sup9097/table-dice-app/internal/table"
)

var (
	// ErrUntrained is returned when predicting on a table without a model.
	ErrUntrained = errors.New("model not trained")
	// ErrReadOnlyTable is returned when writing rolls to the aggregate table.
	ErrReadOnlyTable = errors.New("table is derived and cannot be written")
	// ErrSelfCopy is returned when copying a simulation table onto itself.
	ErrSelfCopy = errors.New("table is already a simulation table")
)

// Options configures a Predictor.
type Options struct {
	Learn     learn.Options
	Generator *dice.Generator
	Logger    *zap.Logger
}

// Predictor is the core service.
type Predictor struct {
	mu             sync.Mutex
	current        table.Name
	models         map[table.Name]*learn.Model
	lastPrediction map[table.Name]dice.Roll
	locks          map[table.Name]*sync.Mutex
	tracker        *accuracy.Tracker

	genMu sync.Mutex
	gen   *dice.Generator

	history *history.Store
	opts    learn.Options
	log     *zap.Logger
}

// Open loads every shard into hist, selects the default table and recomputes
// the aggregate table.
func Open(ctx context.Context, hist *history.Store, opts Options) (*Predictor, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Generator == nil {
		opts.Generator = dice.NewGenerator()
	}
	if opts.Learn.Estimators <= 0 {
		opts.Learn = learn.DefaultOptions()
	}
	p := &Predictor{
		current:        table.Default,
		models:         map[table.Name]*learn.Model{},
		lastPrediction: map[table.Name]dice.Roll{},
		locks:          map[table.Name]*sync.Mutex{},
		tracker:        accuracy.NewTracker(),
		gen:            opts.Generator,
		history:        hist,
		opts:           opts.Learn,
		log:            opts.Logger,
	}
	if err := hist.Load(ctx); err != nil {
		return nil, err
	}
	if err := p.aggregate(ctx); err != nil {
		return nil, err
	}
	p.log.Debug("predictor ready", zap.String("session", p.tracker.SessionID()))
	return p, nil
}

// Current returns the selected table.
func (p *Predictor) Current() table.Name {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// History returns a copy of the history of t.
func (p *Predictor) History(t table.Name) []dice.Roll {
	return p.history.Get(t)
}

// Histories returns copies of every non-empty history.
func (p *Predictor) Histories() map[table.Name][]dice.Roll {
	return p.history.Snapshot()
}

// Shards lists the persisted shards.
func (p *Predictor) Shards(ctx context.Context) ([]store.Ref, error) {
	return p.history.Shards(ctx)
}

// Trained reports whether t has a live model.
func (p *Predictor) Trained(t table.Name) bool {
	_, ok := p.model(t)
	return ok
}

// Accuracy returns a snapshot of the session accuracy log.
func (p *Predictor) Accuracy() accuracy.Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Summary()
}

// SelectTable makes name the current table. Selecting the aggregate table
// recomputes it from the base tables.
func (p *Predictor) SelectTable(ctx context.Context, name string) error {
	t, err := table.Parse(name)
	if err != nil {
		p.log.Warn("rejected table selection", zap.String("table", name))
		return err
	}
	if t == table.Aggregate {
		if err := p.aggregate(ctx); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.current = t
	p.mu.Unlock()
	p.log.Info("selected table", zap.String("table", string(t)))
	return nil
}

func (p *Predictor) aggregate(ctx context.Context) error {
	lock := p.tableLock(table.Aggregate)
	lock.Lock()
	defer lock.Unlock()
	var combined []dice.Roll
	for _, base := range table.Base {
		combined = append(combined, p.history.Get(base)...)
	}
	if err := p.history.Replace(ctx, table.Aggregate, combined); err != nil {
		return err
	}
	p.log.Debug("aggregated table", zap.String("table", string(table.Aggregate)), zap.Int("rows", len(combined)))
	return nil
}

// AppendRolls parses raw digits and appends the rolls to the current table.
// Nothing is appended unless every group parses.
func (p *Predictor) AppendRolls(ctx context.Context, raw string) ([]dice.Roll, error) {
	rolls, err := dice.ParseDigits(strings.TrimSpace(raw))
	if err != nil {
		p.log.Warn("rejected roll input", zap.String("input", raw), zap.Error(err))
		return nil, err
	}
	t, err := p.writable()
	if err != nil {
		return nil, err
	}
	lock := p.tableLock(t)
	lock.Lock()
	defer lock.Unlock()
	if err := p.history.Append(ctx, t, rolls); err != nil {
		return nil, err
	}
	p.log.Info("appended rolls", zap.String("table", string(t)), zap.Int("count", len(rolls)))
	return rolls, nil
}

// Undo removes the most recent roll of the current table.
func (p *Predictor) Undo(ctx context.Context) (dice.Roll, error) {
	t, err := p.writable()
	if err != nil {
		return dice.Roll{}, err
	}
	lock := p.tableLock(t)
	lock.Lock()
	defer lock.Unlock()
	removed, err := p.history.Undo(ctx, t)
	if err != nil {
		if errors.Is(err, history.ErrEmptyHistory) {
			p.log.Info("nothing to undo", zap.String("table", string(t)))
		}
		return dice.Roll{}, err
	}
	p.log.Info("removed last roll", zap.String("table", string(t)), zap.Stringer("roll", removed))
	return removed, nil
}

// Reset clears the in-memory history of the current table and the accuracy
// log. Shards stay on disk; see Purge.
func (p *Predictor) Reset() {
	t := p.Current()
	lock := p.tableLock(t)
	lock.Lock()
	p.history.Reset(t)
	lock.Unlock()

	p.mu.Lock()
	p.tracker.Reset()
	delete(p.lastPrediction, t)
	p.mu.Unlock()
	p.log.Info("reset table", zap.String("table", string(t)))
}

// Purge deletes every shard of the current table.
func (p *Predictor) Purge(ctx context.Context) ([]store.Ref, error) {
	t := p.Current()
	lock := p.tableLock(t)
	lock.Lock()
	defer lock.Unlock()
	removed, err := p.history.Purge(ctx, t)
	for _, ref := range removed {
		p.log.Info("deleted shard", zap.String("shard", ref.Name))
	}
	return removed, err
}

// Simulate appends count random rolls of fair dice to the current table.
func (p *Predictor) Simulate(ctx context.Context, count int) ([]dice.Roll, error) {
	if count <= 0 {
		return nil, fmt.Errorf("simulation count must be > 0")
	}
	t, err := p.writable()
	if err != nil {
		return nil, err
	}
	p.genMu.Lock()
	rolls := p.gen.Rolls(count)
	p.genMu.Unlock()

	lock := p.tableLock(t)
	lock.Lock()
	defer lock.Unlock()
	if err := p.history.Append(ctx, t, rolls); err != nil {
		return nil, err
	}
	p.log.Info("added simulated rolls", zap.String("table", string(t)), zap.Int("count", count))
	return rolls, nil
}

// CopyToSimulation extends the simulation twin of the current table with the
// current table's history and returns the twin. A simulation table is its own
// twin; copying it returns ErrSelfCopy instead of doubling its history.
func (p *Predictor) CopyToSimulation(ctx context.Context) (table.Name, error) {
	t := p.Current()
	twin, err := t.SimTwin()
	if err != nil {
		p.log.Warn("rejected simulation copy", zap.String("table", string(t)), zap.Error(err))
		return "", err
	}
	if twin == t {
		return "", fmt.Errorf("%w: %s", ErrSelfCopy, t)
	}
	rolls := p.history.Get(t)
	lock := p.tableLock(twin)
	lock.Lock()
	defer lock.Unlock()
	if err := p.history.Append(ctx, twin, rolls); err != nil {
		return "", err
	}
	p.log.Info("copied to simulation table", zap.String("from", string(t)), zap.String("to", string(twin)), zap.Int("rows", len(rolls)))
	return twin, nil
}

// PredictFrequency returns the n most frequent rolls of the current table.
func (p *Predictor) PredictFrequency(n int) []dice.Roll {
	h := p.history.Get(p.Current())
	p.genMu.Lock()
	defer p.genMu.Unlock()
	return forecast.Top(h, n, p.gen)
}

// Evaluate scores a freshly fitted model on a held-out split of the current
// table. The live model is not touched.
func (p *Predictor) Evaluate() (learn.Evaluation, error) {
	t := p.Current()
	ev, err := learn.Evaluate(p.history.Get(t), p.opts)
	if err != nil {
		p.log.Warn("evaluation skipped", zap.String("table", string(t)), zap.Error(err))
		return learn.Evaluation{}, err
	}
	return ev, nil
}

// Correlation computes the position correlation of name, or of the current
// table when name is empty.
func (p *Predictor) Correlation(name string) (stats.Matrix, error) {
	t := p.Current()
	if name != "" {
		parsed, err := table.Parse(name)
		if err != nil {
			return stats.Matrix{}, err
		}
		t = parsed
	}
	m, err := stats.Correlation(p.history.Get(t))
	if err != nil {
		p.log.Warn("correlation skipped", zap.String("table", string(t)), zap.Error(err))
	}
	return m, err
}

// CorrelationSweep analyzes every table with enough rows.
func (p *Predictor) CorrelationSweep() []stats.TableCorrelation {
	return stats.Sweep(p.history.Snapshot())
}

func (p *Predictor) writable() (table.Name, error) {
	t := p.Current()
	if t.Kind() == table.KindAggregate {
		return "", fmt.Errorf("%w: %s", ErrReadOnlyTable, t)
	}
	return t, nil
}

func (p *Predictor) tableLock(t table.Name) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.locks[t]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[t] = lock
	}
	return lock
}
