package features

import (
	"fmt"

	"credit-risk/internal/common"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature vectors with statistics fitted on a reference sample.
// Fields are written only by Fit.
type Scaler struct {
	order []string
	mean  []float64
	scale []float64
}

// Fit computes per-dimension mean and population standard deviation over samples,
// laid out in order. An empty sample is reported as ErrDataUnavailable.
func Fit(samples []FeatureRecord, order []string) (*Scaler, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: training sample is empty", common.ErrDataUnavailable)
	}

	columns := make([][]float64, len(order))
	for i := range columns {
		columns[i] = make([]float64, len(samples))
	}
	for row, rec := range samples {
		x, err := rec.Vector(order)
		if err != nil {
			return nil, err
		}
		for i, v := range x {
			columns[i][row] = v
		}
	}

	s := &Scaler{
		order: append([]string(nil), order...),
		mean:  make([]float64, len(order)),
		scale: make([]float64, len(order)),
	}
	for i, col := range columns {
		s.mean[i], s.scale[i] = stat.PopMeanStdDev(col, nil)
	}
	return s, nil
}

// Transform reorders the record into the fitted order and standardizes it.
func (s *Scaler) Transform(r FeatureRecord) ([]float64, error) {
	x, err := r.Vector(s.order)
	if err != nil {
		return nil, err
	}
	return s.TransformVector(x)
}

// TransformVector standardizes a vector already laid out in the fitted order.
// A zero-variance dimension is centered but not divided.
func (s *Scaler) TransformVector(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.mean), len(x))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		centered := v - s.mean[i]
		if s.scale[i] == 0 {
			out[i] = centered
			continue
		}
		out[i] = centered / s.scale[i]
	}
	return out, nil
}

// Order returns the feature order the scaler was fitted with.
func (s *Scaler) Order() []string { return append([]string(nil), s.order...) }

// Mean returns the fitted per-dimension means.
func (s *Scaler) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns the fitted per-dimension standard deviations.
func (s *Scaler) Scale() []float64 { return append([]float64(nil), s.scale...) }
