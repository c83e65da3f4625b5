// Package features defines the applicant feature record, the fixed feature
// ordering shared with the training export, and the standard scaler fitted on
// the reference training split.
//
// The scaler is built once at startup and never mutated afterwards, so a single
// instance can be shared by every request handler.
package features

import (
	"fmt"
	"math"

	"credit-risk/internal/common"
)

// FeatureRecord is one applicant as entered in the assessment form.
type FeatureRecord struct {
	Income     float64 `json:"income" yaml:"income"`
	Age        int     `json:"age" yaml:"age"`
	LoanAmount float64 `json:"loan_amount" yaml:"loan_amount"`
}

// Validate checks the form ranges: income >= 0, age in [18,100], loan >= 0.
func (r FeatureRecord) Validate() error {
	if math.IsNaN(r.Income) || math.IsInf(r.Income, 0) || r.Income < 0 {
		return fmt.Errorf("%w: income must be a non-negative number, got %v", common.ErrInvalidInput, r.Income)
	}
	if r.Age < common.MinApplicantAge || r.Age > common.MaxApplicantAge {
		return fmt.Errorf("%w: age must be between %d and %d, got %d",
			common.ErrInvalidInput, common.MinApplicantAge, common.MaxApplicantAge, r.Age)
	}
	if math.IsNaN(r.LoanAmount) || math.IsInf(r.LoanAmount, 0) || r.LoanAmount < 0 {
		return fmt.Errorf("%w: loan amount must be a non-negative number, got %v", common.ErrInvalidInput, r.LoanAmount)
	}
	return nil
}

// Value returns the raw value of the named feature.
func (r FeatureRecord) Value(name string) (float64, error) {
	switch name {
	case common.FeatureIncome:
		return r.Income, nil
	case common.FeatureAge:
		return float64(r.Age), nil
	case common.FeatureLoan:
		return r.LoanAmount, nil
	default:
		return 0, fmt.Errorf("unknown feature %q", name)
	}
}

// Vector lays the record out in the given feature order.
func (r FeatureRecord) Vector(order []string) ([]float64, error) {
	x := make([]float64, len(order))
	for i, name := range order {
		v, err := r.Value(name)
		if err != nil {
			return nil, err
		}
		x[i] = v
	}
	return x, nil
}

// ValidateOrder ensures order is a permutation of the known feature names.
// Reordering is allowed, dropping or repeating a feature is not.
func ValidateOrder(order []string) error {
	known := common.DefaultFeatureOrder()
	if len(order) != len(known) {
		return fmt.Errorf("feature order must list %d features, got %d", len(known), len(order))
	}

	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if _, err := (FeatureRecord{}).Value(name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("feature %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
