package ml

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"credit-risk/internal/common"
	"credit-risk/internal/features"
)

// MetricsInterface defines the metrics the voter reports.
type MetricsInterface interface {
	ModelInferenceInc(model string)
	ModelFailureInc(model string)
	ModelLatencyObserve(model string, seconds float64)
	VotingLatencyObserve(seconds float64)
}

// Transformer turns a raw record into the standardized vector the models expect.
// *features.Scaler implements it.
type Transformer interface {
	Transform(r features.FeatureRecord) ([]float64, error)
}

// Outcome is the per-model result of one vote: either Success or Failure.
type Outcome interface {
	ModelName() string
	isOutcome()
}

// Success carries the probabilities a model returned.
type Success struct {
	Model string
	Probabilities
}

func (s Success) ModelName() string { return s.Model }
func (Success) isOutcome()          {}

// Failure carries the reason a model produced no usable probabilities.
type Failure struct {
	Model string
	Err   error
}

func (f Failure) ModelName() string { return f.Model }
func (Failure) isOutcome()          {}

// PredictionResult is the outcome of one soft vote.
type PredictionResult struct {
	// Outcomes holds one entry per registered model, in registry order.
	Outcomes []Outcome
	// Mean is the unweighted mean over successful models.
	Mean Probabilities
	// Used counts the successful models.
	Used int
}

// Failures returns the failed outcomes.
func (p *PredictionResult) Failures() []Failure {
	var out []Failure
	for _, o := range p.Outcomes {
		if f, ok := o.(Failure); ok {
			out = append(out, f)
		}
	}
	return out
}

// SoftVoter averages the class probabilities of every registered model.
type SoftVoter struct {
	scaler   Transformer
	registry *Registry
	metrics  MetricsInterface
}

// NewSoftVoter wires a voter. metrics may be nil.
func NewSoftVoter(scaler Transformer, registry *Registry, metrics MetricsInterface) (*SoftVoter, error) {
	if scaler == nil {
		return nil, fmt.Errorf("scaler is required")
	}
	if registry == nil || registry.Len() == 0 {
		return nil, common.ErrNoUsableModels
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &SoftVoter{scaler: scaler, registry: registry, metrics: metrics}, nil
}

// Registry returns the models the voter consults.
func (v *SoftVoter) Registry() *Registry { return v.registry }

// Predict standardizes record, queries every model concurrently and averages
// the successful answers. A failing model only loses its vote; when all fail
// the error is ErrNoPredictionsAvailable.
func (v *SoftVoter) Predict(ctx context.Context, record features.FeatureRecord) (*PredictionResult, error) {
	start := time.Now()
	defer func() {
		v.metrics.VotingLatencyObserve(time.Since(start).Seconds())
	}()

	x, err := v.scaler.Transform(record)
	if err != nil {
		return nil, fmt.Errorf("standardize features: %w", err)
	}

	models := v.registry.models
	outcomes := make([]Outcome, len(models))

	var wg sync.WaitGroup
	for i, m := range models {
		wg.Add(1)
		go func(i int, m RegisteredModel) {
			defer wg.Done()
			outcomes[i] = v.ask(ctx, m, x)
		}(i, m)
	}
	wg.Wait()

	result := &PredictionResult{Outcomes: outcomes}
	for _, o := range outcomes {
		s, ok := o.(Success)
		if !ok {
			continue
		}
		result.Used++
		n := float64(result.Used)
		result.Mean.Repay += (s.Repay - result.Mean.Repay) / n
		result.Mean.Default += (s.Default - result.Mean.Default) / n
	}

	if result.Used == 0 {
		return result, fmt.Errorf("%w: all %d models failed", common.ErrNoPredictionsAvailable, len(models))
	}
	return result, nil
}

func (v *SoftVoter) ask(ctx context.Context, m RegisteredModel, x []float64) (out Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = Failure{Model: m.Name, Err: fmt.Errorf("%w: panic: %v", common.ErrInferenceFailed, r)}
		}
		v.metrics.ModelLatencyObserve(m.Name, time.Since(start).Seconds())
		if f, failed := out.(Failure); failed {
			v.metrics.ModelFailureInc(m.Name)
			log.Warn().Err(f.Err).Str("model", m.Name).Msg("Model prediction failed")
			return
		}
		v.metrics.ModelInferenceInc(m.Name)
	}()

	// models run concurrently and must not share the input slice
	in := append([]float64(nil), x...)
	p, err := m.Model.PredictProbability(ctx, in)
	if err != nil {
		return Failure{Model: m.Name, Err: fmt.Errorf("%w: %v", common.ErrInferenceFailed, err)}
	}
	if err := p.Validate(); err != nil {
		return Failure{Model: m.Name, Err: fmt.Errorf("%w: %v", common.ErrInferenceFailed, err)}
	}
	return Success{Model: m.Name, Probabilities: p}
}

type noopMetrics struct{}

func (noopMetrics) ModelInferenceInc(string)            {}
func (noopMetrics) ModelFailureInc(string)              {}
func (noopMetrics) ModelLatencyObserve(string, float64) {}
func (noopMetrics) VotingLatencyObserve(float64)        {}
