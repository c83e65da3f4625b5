// Package ml provides the classifiers behind the credit assessment: decoding of
// exported model artifacts, the model registry that keeps only probability-capable
// models, and the soft-voting predictor that averages their probabilities.
//
// Class 0 is "repay" and class 1 is "default" for every model kind, matching the
// label encoding of the training export.
package ml

import (
	"context"
	"fmt"
	"math"
)

// Class labels shared by all classifiers.
const (
	ClassRepay   = 0
	ClassDefault = 1
)

// numFeatures is the width of the standardized input vector.
const numFeatures = 3

// probabilityTolerance bounds how far repay+default may drift from 1.
const probabilityTolerance = 0.01

// Probabilities is the (repay, default) pair produced by one model or by the vote.
type Probabilities struct {
	Repay   float64 `json:"repay"`
	Default float64 `json:"default"`
}

// Validate rejects non-finite, out-of-range or non-complementary pairs.
func (p Probabilities) Validate() error {
	for _, v := range []float64{p.Repay, p.Default} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return fmt.Errorf("probability %v outside [0,1]", v)
		}
	}
	if math.Abs(p.Repay+p.Default-1) > probabilityTolerance {
		return fmt.Errorf("probabilities sum to %v, expected 1", p.Repay+p.Default)
	}
	return nil
}

// Classifier is any decoded model. Every model can produce a hard label.
type Classifier interface {
	// Kind names the artifact kind the model was decoded from.
	Kind() string

	// Predict returns ClassRepay or ClassDefault for a standardized feature vector.
	Predict(x []float64) (int, error)
}

// ProbabilityClassifier is a Classifier that can also report class probabilities.
// Only these are admitted to the Registry.
type ProbabilityClassifier interface {
	Classifier

	// PredictProbability returns the (repay, default) probabilities for a
	// standardized feature vector.
	PredictProbability(ctx context.Context, x []float64) (Probabilities, error)
}

func fromDefaultProbability(p float64) Probabilities {
	return Probabilities{Repay: 1 - p, Default: p}
}

func classOf(p Probabilities) int {
	if p.Default > p.Repay {
		return ClassDefault
	}
	return ClassRepay
}

func checkInput(x []float64) error {
	if len(x) != numFeatures {
		return fmt.Errorf("expected %d features, got %d", numFeatures, len(x))
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("feature %d is not finite", i)
		}
	}
	return nil
}

// finite reports whether every value is neither NaN nor infinite.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
