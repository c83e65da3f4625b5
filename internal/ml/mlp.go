package ml

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Layer is one dense layer: out = W·in + b, with Weights shaped [out][in].
type Layer struct {
	Weights [][]float64 `json:"weights" yaml:"weights"`
	Biases  []float64   `json:"biases" yaml:"biases"`
}

// MLP is a feed-forward network with ReLU hidden layers. A single output unit
// is read as the logistic P(default); two output units are soft-maxed.
type MLP struct {
	Layers []Layer `json:"layers" yaml:"layers"`

	dense []*mat.Dense
	bias  []*mat.VecDense
}

// NewMLP validates the layer shapes and prepares the network for inference.
func NewMLP(layers []Layer) (*MLP, error) {
	m := &MLP{Layers: layers}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MLP) validate() error {
	if len(m.Layers) == 0 {
		return fmt.Errorf("mlp: no layers")
	}

	in := numFeatures
	m.dense = make([]*mat.Dense, len(m.Layers))
	m.bias = make([]*mat.VecDense, len(m.Layers))
	for i, layer := range m.Layers {
		out := len(layer.Weights)
		if out == 0 {
			return fmt.Errorf("mlp: layer %d has no units", i)
		}
		if len(layer.Biases) != out {
			return fmt.Errorf("mlp: layer %d has %d units but %d biases", i, out, len(layer.Biases))
		}
		if !finite(layer.Biases...) {
			return fmt.Errorf("mlp: layer %d has non-finite biases", i)
		}

		backing := make([]float64, 0, out*in)
		for j, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("mlp: layer %d unit %d expects %d inputs, got %d", i, j, in, len(row))
			}
			if !finite(row...) {
				return fmt.Errorf("mlp: layer %d unit %d has non-finite weights", i, j)
			}
			backing = append(backing, row...)
		}
		m.dense[i] = mat.NewDense(out, in, backing)
		m.bias[i] = mat.NewVecDense(out, append([]float64(nil), layer.Biases...))
		in = out
	}

	if in != 1 && in != 2 {
		return fmt.Errorf("mlp: output layer must have 1 or 2 units, got %d", in)
	}
	return nil
}

func (m *MLP) Kind() string { return KindMLP }

func (m *MLP) Predict(x []float64) (int, error) {
	p, err := m.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (m *MLP) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	if err := checkInput(x); err != nil {
		return Probabilities{}, err
	}
	if m.dense == nil {
		return Probabilities{}, fmt.Errorf("mlp: network not initialised, use NewMLP")
	}

	act := mat.NewVecDense(len(x), append([]float64(nil), x...))
	last := len(m.dense) - 1
	for i, w := range m.dense {
		rows, _ := w.Dims()
		next := mat.NewVecDense(rows, nil)
		next.MulVec(w, act)
		next.AddVec(next, m.bias[i])
		if i < last {
			for j := 0; j < rows; j++ {
				next.SetVec(j, math.Max(0, next.AtVec(j)))
			}
		}
		act = next
	}

	if act.Len() == 1 {
		return fromDefaultProbability(sigmoid(act.AtVec(0))), nil
	}

	// numerically stable two-way softmax
	a, b := act.AtVec(0), act.AtVec(1)
	shift := math.Max(a, b)
	ea, eb := math.Exp(a-shift), math.Exp(b-shift)
	return Probabilities{Repay: ea / (ea + eb), Default: eb / (ea + eb)}, nil
}
