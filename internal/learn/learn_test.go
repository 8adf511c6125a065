package learn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sup9097/table-dice-app/internal/dice"
)

func testOptions() Options {
	return Options{Estimators: 20, Seed: 42}
}

func TestTrainRequiresFiveRows(t *testing.T) {
	_, err := Train([]dice.Roll{{1, 2, 3}, {4, 5, 6}, {1, 1, 1}, {2, 2, 2}}, testOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestTrainedModelPredicts(t *testing.T) {
	history := []dice.Roll{{1, 2, 3}, {4, 5, 6}, {1, 1, 2}, {3, 4, 6}, {2, 2, 5}, {1, 3, 6}}
	m, err := Train(history, testOptions())
	require.NoError(t, err)
	assert.Equal(t, len(history), m.Rows())

	last := history[len(history)-1]
	pred := m.Predict(last)
	for p, dist := range m.PredictProba(last) {
		assert.InDelta(t, 1.0, dist.Sum(), 1e-9, "position %d", p)
		assert.Len(t, dist.Probs, len(dist.Classes))
		assert.Contains(t, dist.Classes, pred[p])
	}
}

func TestModelLearnsRepeatingCycle(t *testing.T) {
	cycle := []dice.Roll{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}
	var history []dice.Roll
	for i := 0; i < 10; i++ {
		history = append(history, cycle...)
	}
	m, err := Train(history, testOptions())
	require.NoError(t, err)
	assert.Equal(t, dice.Roll{2, 2, 2}, m.Predict(dice.Roll{1, 1, 1}))
	assert.Equal(t, dice.Roll{1, 1, 1}, m.Predict(dice.Roll{3, 3, 3}))

	ev, err := Evaluate(history, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 9, ev.TestRows)
	assert.Equal(t, 20, ev.TrainRows)
	for p, acc := range ev.Accuracy {
		assert.InDelta(t, 1.0, acc, 1e-9, "position %d", p)
	}
}

func TestEvaluateRequiresTenRows(t *testing.T) {
	history := dice.NewSeededGenerator(1).Rolls(9)
	_, err := Evaluate(history, testOptions())
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestCheckConfidenceWarnsOnStableHotSum(t *testing.T) {
	history := make([]dice.Roll, 8)
	for i := range history {
		history[i] = dice.Roll{1, 2, 3}
	}
	m, err := Train(history, testOptions())
	require.NoError(t, err)

	attempts := CheckConfidence(m, dice.Roll{1, 2, 3}, dice.NewSeededGenerator(2))
	require.Len(t, attempts, ConfidenceAttempts)
	for _, a := range attempts {
		assert.Equal(t, dice.Roll{1, 2, 3}, a.Prediction)
		assert.True(t, a.Hot)
		assert.Equal(t, ConfidenceRepeats, a.Agreeing)
		assert.Contains(t, a.Warning, "sum 6")
	}
}

func TestCheckConfidenceSkipsColdSums(t *testing.T) {
	history := make([]dice.Roll, 8)
	for i := range history {
		history[i] = dice.Roll{3, 3, 4}
	}
	m, err := Train(history, testOptions())
	require.NoError(t, err)

	for _, a := range CheckConfidence(m, dice.Roll{3, 3, 4}, dice.NewSeededGenerator(2)) {
		assert.False(t, a.Hot)
		assert.Zero(t, a.Agreeing)
		assert.Empty(t, a.Warning)
	}
}

func TestIsHotSum(t *testing.T) {
	for _, s := range []int{5, 6, 15, 16} {
		assert.True(t, IsHotSum(s))
	}
	assert.False(t, IsHotSum(10))
}

func TestCommonFace(t *testing.T) {
	assert.Equal(t, 4, commonFace(dice.Roll{1, 4, 4}))
	assert.Equal(t, 1, commonFace(dice.Roll{1, 2, 3}))
}
