package forest

// MultiOutput fits one independent Classifier per target column.
type MultiOutput struct {
	estimators []*Classifier
}

// FitMulti trains one forest per column of Y. Every forest gets the same
// options, including the seed.
func FitMulti(X [][]int, Y [][]int, opts Options) (*MultiOutput, error) {
	if len(X) == 0 || len(Y) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(X) != len(Y) {
		return nil, ErrShapeMismatch
	}
	outputs := len(Y[0])
	m := &MultiOutput{estimators: make([]*Classifier, 0, outputs)}
	for col := 0; col < outputs; col++ {
		y := make([]int, len(Y))
		for i, row := range Y {
			y[i] = row[col]
		}
		c, err := Fit(X, y, opts)
		if err != nil {
			return nil, err
		}
		m.estimators = append(m.estimators, c)
	}
	return m, nil
}

// Outputs returns the number of target columns.
func (m *MultiOutput) Outputs() int {
	return len(m.estimators)
}

// Estimator returns the forest of one target column.
func (m *MultiOutput) Estimator(col int) *Classifier {
	return m.estimators[col]
}

// Predict returns one label per target column.
func (m *MultiOutput) Predict(x []int) []int {
	out := make([]int, len(m.estimators))
	for i, c := range m.estimators {
		out[i] = c.Predict(x)
	}
	return out
}

// PredictProba returns the class probabilities of every target column.
func (m *MultiOutput) PredictProba(x []int) [][]float64 {
	out := make([][]float64, len(m.estimators))
	for i, c := range m.estimators {
		out[i] = c.PredictProba(x)
	}
	return out
}
