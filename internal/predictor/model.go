package predictor

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sup9097/table-dice-app/internal/accuracy"
	"github.com/sup9097/table-dice-app/internal/dice"
	"github.com/sup9097/table-dice-app/internal/history"
	"github.com/sup9097/table-dice-app/internal/learn"
	"github.com/sup9097/table-dice-app/internal/table"
)

// Observation is the outcome of feeding ground truth into the current table.
type Observation struct {
	Table    table.Name
	Appended []dice.Roll
	// Comparison is set when a prediction was pending for the table or the
	// history before the append was long enough to fit a model.
	Comparison *accuracy.Comparison
	Frequency  []dice.Roll
	// Prediction is set when the table could be trained after the append.
	Prediction    *dice.Roll
	Probabilities [3]learn.Distribution
	TrainErr      error
}

// Train fits a fresh model on the current table. On insufficient data the
// previous model, if any, is kept.
func (p *Predictor) Train(ctx context.Context) error {
	return p.train(ctx, p.Current())
}

// TrainAll trains every table that has enough rows, in parallel, and returns
// the tables that were trained.
func (p *Predictor) TrainAll(ctx context.Context) ([]table.Name, error) {
	var eligible []table.Name
	for _, t := range table.All {
		if p.history.Len(t) >= learn.MinTrainRows {
			eligible = append(eligible, t)
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range eligible {
		t := t
		g.Go(func() error {
			return p.train(gctx, t)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return eligible, nil
}

func (p *Predictor) train(ctx context.Context, t table.Name) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := p.tableLock(t)
	lock.Lock()
	defer lock.Unlock()

	m, err := learn.Train(p.history.Get(t), p.opts)
	if err != nil {
		p.log.Warn("training skipped", zap.String("table", string(t)), zap.Error(err))
		return err
	}
	p.mu.Lock()
	p.models[t] = m
	p.mu.Unlock()
	p.log.Info("trained model", zap.String("table", string(t)), zap.Int("pairs", m.Rows()))
	return nil
}

func (p *Predictor) model(t table.Name) (*learn.Model, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.models[t]
	return m, ok
}

// PredictModel predicts the roll following last with the current table's
// model and returns the per-position class probabilities.
func (p *Predictor) PredictModel(last dice.Roll) (dice.Roll, [3]learn.Distribution, error) {
	t := p.Current()
	m, ok := p.model(t)
	if !ok {
		return dice.Roll{}, [3]learn.Distribution{}, ErrUntrained
	}
	return m.Predict(last), m.PredictProba(last), nil
}

// PredictNext predicts from the last roll of the current table and keeps the
// prediction so the next Observe can score it.
func (p *Predictor) PredictNext() (dice.Roll, [3]learn.Distribution, error) {
	t := p.Current()
	last, ok := p.history.Last(t)
	if !ok {
		return dice.Roll{}, [3]learn.Distribution{}, history.ErrEmptyHistory
	}
	pred, dists, err := p.PredictModel(last)
	if err != nil {
		return pred, dists, err
	}
	p.mu.Lock()
	p.lastPrediction[t] = pred
	p.mu.Unlock()
	return pred, dists, nil
}

// CheckConfidence runs the hot-sum check from the last roll of the current
// table.
func (p *Predictor) CheckConfidence() ([]learn.Attempt, error) {
	t := p.Current()
	m, ok := p.model(t)
	if !ok {
		return nil, ErrUntrained
	}
	last, ok := p.history.Last(t)
	if !ok {
		return nil, history.ErrEmptyHistory
	}
	p.genMu.Lock()
	attempts := learn.CheckConfidence(m, last, p.gen)
	p.genMu.Unlock()
	for _, a := range attempts {
		if a.Warning != "" {
			p.log.Warn("hot sum prediction", zap.String("table", string(t)), zap.String("warning", a.Warning))
		}
	}
	return attempts, nil
}

// Observe appends ground-truth rolls to the current table. A pending
// prediction is scored against the first appended roll. Without one, a model
// fitted on the history before the append predicts from its last roll and that
// prediction is scored instead. The table is then retrained and a new
// prediction is made from the newest roll.
func (p *Predictor) Observe(ctx context.Context, raw string, top int) (Observation, error) {
	t := p.Current()
	p.mu.Lock()
	pending, hasPending := p.lastPrediction[t]
	p.mu.Unlock()
	prior := p.history.Get(t)

	rolls, err := p.AppendRolls(ctx, raw)
	if err != nil {
		return Observation{}, err
	}
	obs := Observation{Table: t, Appended: rolls}

	if !hasPending {
		pending, hasPending = p.standalonePrediction(t, prior)
	}
	if hasPending {
		c := accuracy.Compare(pending, rolls[0])
		p.mu.Lock()
		p.tracker.Record(c)
		delete(p.lastPrediction, t)
		p.mu.Unlock()
		obs.Comparison = &c
		if c.Tag != "" {
			p.log.Info("prediction missed", zap.String("table", string(t)), zap.Int("diff", c.Diff), zap.String("tag", c.Tag))
		}
	}

	obs.Frequency = p.PredictFrequency(top)
	if err := p.Train(ctx); err != nil {
		if !errors.Is(err, learn.ErrInsufficientData) {
			return obs, err
		}
		obs.TrainErr = err
		return obs, nil
	}
	pred, dists, err := p.PredictNext()
	if err != nil {
		return obs, err
	}
	obs.Prediction = &pred
	obs.Probabilities = dists
	return obs, nil
}

// standalonePrediction fits a throwaway model on prior and predicts the roll
// that follows it. The live model is not touched.
func (p *Predictor) standalonePrediction(t table.Name, prior []dice.Roll) (dice.Roll, bool) {
	if len(prior) < learn.MinTrainRows {
		return dice.Roll{}, false
	}
	m, err := learn.Train(prior, p.opts)
	if err != nil {
		p.log.Debug("standalone prediction skipped", zap.String("table", string(t)), zap.Error(err))
		return dice.Roll{}, false
	}
	return m.Predict(prior[len(prior)-1]), true
}
