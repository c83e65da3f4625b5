package ml

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Supported SVM kernels.
const (
	KernelLinear = "linear"
	KernelRBF    = "rbf"
)

// SVM is a binary support vector classifier. The decision value is
// sum(dual_coef[i] * K(sv[i], x)) + intercept and a positive value predicts
// ClassDefault. Without calibration it only yields hard labels.
type SVM struct {
	Kernel         string      `json:"kernel" yaml:"kernel"`
	Gamma          float64     `json:"gamma" yaml:"gamma"`
	SupportVectors [][]float64 `json:"support_vectors" yaml:"support_vectors"`
	DualCoef       []float64   `json:"dual_coef" yaml:"dual_coef"`
	Intercept      float64     `json:"intercept" yaml:"intercept"`
}

func (s *SVM) validate() error {
	switch s.Kernel {
	case KernelLinear:
	case KernelRBF:
		if !finite(s.Gamma) || s.Gamma <= 0 {
			return fmt.Errorf("svm: rbf kernel needs a positive gamma, got %v", s.Gamma)
		}
	default:
		return fmt.Errorf("svm: unsupported kernel %q", s.Kernel)
	}
	if len(s.SupportVectors) == 0 {
		return fmt.Errorf("svm: no support vectors")
	}
	if len(s.DualCoef) != len(s.SupportVectors) {
		return fmt.Errorf("svm: %d support vectors but %d dual coefficients", len(s.SupportVectors), len(s.DualCoef))
	}
	for i, sv := range s.SupportVectors {
		if len(sv) != numFeatures {
			return fmt.Errorf("svm: support vector %d has %d features, expected %d", i, len(sv), numFeatures)
		}
		if !finite(sv...) {
			return fmt.Errorf("svm: support vector %d is not finite", i)
		}
	}
	if !finite(s.DualCoef...) || !finite(s.Intercept) {
		return fmt.Errorf("svm: dual coefficients and intercept must be finite")
	}
	return nil
}

func (s *SVM) Kind() string { return KindSVM }

// DecisionFunction returns the signed distance to the separating surface.
func (s *SVM) DecisionFunction(x []float64) (float64, error) {
	if err := checkInput(x); err != nil {
		return 0, err
	}
	sum := s.Intercept
	for i, sv := range s.SupportVectors {
		sum += s.DualCoef[i] * s.kernel(sv, x)
	}
	return sum, nil
}

func (s *SVM) kernel(a, b []float64) float64 {
	if s.Kernel == KernelRBF {
		d := floats.Distance(a, b, 2)
		return math.Exp(-s.Gamma * d * d)
	}
	return floats.Dot(a, b)
}

func (s *SVM) Predict(x []float64) (int, error) {
	d, err := s.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return ClassDefault, nil
	}
	return ClassRepay, nil
}

// CalibratedSVM adds Platt scaling to an SVM:
// P(default) = 1 / (1 + exp(ProbA*d + ProbB)) for decision value d.
type CalibratedSVM struct {
	*SVM
	ProbA float64
	ProbB float64
}

func (s *CalibratedSVM) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	d, err := s.DecisionFunction(x)
	if err != nil {
		return Probabilities{}, err
	}
	return fromDefaultProbability(1.0 / (1.0 + math.Exp(s.ProbA*d+s.ProbB))), nil
}

func (s *CalibratedSVM) Predict(x []float64) (int, error) {
	p, err := s.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}
