package ml

import (
	"context"
	"fmt"
)

// leafNode marks a node without children in the flat tree arrays.
const leafNode = -1

// DecisionTree is a binary tree stored as parallel node arrays in pre-order.
// Samples go left when x[feature] <= threshold. Value holds the per-class
// training counts (or weights) at each node.
type DecisionTree struct {
	ChildrenLeft  []int       `json:"children_left" yaml:"children_left"`
	ChildrenRight []int       `json:"children_right" yaml:"children_right"`
	Feature       []int       `json:"feature" yaml:"feature"`
	Threshold     []float64   `json:"threshold" yaml:"threshold"`
	Value         [][]float64 `json:"value" yaml:"value"`
}

func (t *DecisionTree) validate() error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("decision tree: no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("decision tree: node arrays have mismatched lengths")
	}

	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leafNode && r == leafNode {
			if err := validateCounts(t.Value[i]); err != nil {
				return fmt.Errorf("decision tree: leaf %d: %w", i, err)
			}
			continue
		}
		// pre-order layout: children always come after their parent
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("decision tree: node %d has invalid children (%d, %d)", i, l, r)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= numFeatures {
			return fmt.Errorf("decision tree: node %d splits on unknown feature %d", i, t.Feature[i])
		}
		if !finite(t.Threshold[i]) {
			return fmt.Errorf("decision tree: node %d has a non-finite threshold", i)
		}
	}
	return nil
}

func validateCounts(counts []float64) error {
	if len(counts) != 2 {
		return fmt.Errorf("expected 2 class counts, got %d", len(counts))
	}
	if !finite(counts...) {
		return fmt.Errorf("class counts %v must be finite", counts)
	}
	if counts[0] < 0 || counts[1] < 0 || counts[0]+counts[1] <= 0 {
		return fmt.Errorf("class counts %v must be non-negative with a positive total", counts)
	}
	return nil
}

func (t *DecisionTree) Kind() string { return KindDecisionTree }

func (t *DecisionTree) Predict(x []float64) (int, error) {
	p, err := t.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (t *DecisionTree) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	if err := checkInput(x); err != nil {
		return Probabilities{}, err
	}
	return t.leafProbabilities(x), nil
}

func (t *DecisionTree) leafProbabilities(x []float64) Probabilities {
	node := 0
	for t.ChildrenLeft[node] != leafNode {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	counts := t.Value[node]
	total := counts[0] + counts[1]
	return Probabilities{Repay: counts[0] / total, Default: counts[1] / total}
}

// RandomForest averages the leaf probabilities of its trees.
type RandomForest struct {
	Trees []*DecisionTree `json:"trees" yaml:"trees"`
}

func (f *RandomForest) validate() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("random forest: no trees")
	}
	for i, tree := range f.Trees {
		if tree == nil {
			return fmt.Errorf("random forest: tree %d is empty", i)
		}
		if err := tree.validate(); err != nil {
			return fmt.Errorf("random forest: tree %d: %w", i, err)
		}
	}
	return nil
}

func (f *RandomForest) Kind() string { return KindRandomForest }

func (f *RandomForest) Predict(x []float64) (int, error) {
	p, err := f.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (f *RandomForest) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	if err := checkInput(x); err != nil {
		return Probabilities{}, err
	}

	var sum Probabilities
	for _, tree := range f.Trees {
		p := tree.leafProbabilities(x)
		sum.Repay += p.Repay
		sum.Default += p.Default
	}
	n := float64(len(f.Trees))
	return Probabilities{Repay: sum.Repay / n, Default: sum.Default / n}, nil
}
