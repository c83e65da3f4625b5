package ml

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression scores P(default) = sigmoid(coef·x + intercept).
type LogisticRegression struct {
	Coef      []float64 `json:"coef" yaml:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if len(m.Coef) != numFeatures {
		return fmt.Errorf("logistic regression: expected %d coefficients, got %d", numFeatures, len(m.Coef))
	}
	if !finite(m.Coef...) || !finite(m.Intercept) {
		return fmt.Errorf("logistic regression: parameters must be finite")
	}
	return nil
}

func (m *LogisticRegression) Kind() string { return KindLogisticRegression }

func (m *LogisticRegression) Predict(x []float64) (int, error) {
	p, err := m.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (m *LogisticRegression) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	if err := checkInput(x); err != nil {
		return Probabilities{}, err
	}
	return fromDefaultProbability(sigmoid(floats.Dot(m.Coef, x) + m.Intercept)), nil
}
