package ml

import (
	"context"
	"sync"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu            sync.Mutex
	inferences    map[string]int
	failures      map[string]int
	modelLatency  map[string]int
	votingLatency int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		inferences:   make(map[string]int),
		failures:     make(map[string]int),
		modelLatency: make(map[string]int),
	}
}

func (m *MockMetrics) ModelInferenceInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inferences[model]++
}

func (m *MockMetrics) ModelFailureInc(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[model]++
}

func (m *MockMetrics) ModelLatencyObserve(model string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelLatency[model]++
}

func (m *MockMetrics) VotingLatencyObserve(float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votingLatency++
}

func (m *MockMetrics) Inferences(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inferences[model]
}

func (m *MockMetrics) Failures(model string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[model]
}

func (m *MockMetrics) VotingObservations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.votingLatency
}

// StaticModel is a ProbabilityClassifier that answers with fixed values, for
// wiring tests in other packages.
type StaticModel struct {
	Probs Probabilities
	Err   error
}

func (s *StaticModel) Kind() string { return "static" }

func (s *StaticModel) Predict(x []float64) (int, error) {
	p, err := s.PredictProbability(context.Background(), x)
	if err != nil {
		return 0, err
	}
	return classOf(p), nil
}

func (s *StaticModel) PredictProbability(context.Context, []float64) (Probabilities, error) {
	if s.Err != nil {
		return Probabilities{}, s.Err
	}
	return s.Probs, nil
}
