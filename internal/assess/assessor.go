// Package assess runs one applicant through validation, the soft vote and the
// risk decision.
package assess

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"credit-risk/internal/features"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

// Predictor is the soft vote as seen by the assessor. *ml.SoftVoter implements it.
type Predictor interface {
	Predict(ctx context.Context, record features.FeatureRecord) (*ml.PredictionResult, error)
}

// MetricsInterface defines the metrics the assessor reports.
type MetricsInterface interface {
	AssessmentInc()
	AssessmentFailureInc()
	AssessmentLatencyObserve(seconds float64)
	MeanRepayObserve(p float64)
	VerdictInc(category string)
}

// Assessment is the full result for one applicant.
type Assessment struct {
	ID         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	Input      features.FeatureRecord `json:"input"`
	Prediction *ml.PredictionResult   `json:"-"`
	Verdict    risk.Verdict           `json:"verdict"`
}

type Assessor struct {
	predictor  Predictor
	thresholds risk.Thresholds
	metrics    MetricsInterface
	now        func() time.Time
}

// New builds an assessor. m may be nil.
func New(p Predictor, t risk.Thresholds, m MetricsInterface) *Assessor {
	if m == nil {
		m = noopMetrics{}
	}
	return &Assessor{predictor: p, thresholds: t, metrics: m, now: time.Now}
}

// Thresholds returns the decision thresholds in use.
func (a *Assessor) Thresholds() risk.Thresholds { return a.thresholds }

// Assess validates record, runs the vote and maps the mean repay probability to
// a verdict. Validation errors wrap common.ErrInvalidInput; predictor errors
// are returned unchanged.
func (a *Assessor) Assess(ctx context.Context, record features.FeatureRecord) (*Assessment, error) {
	start := time.Now()
	defer func() {
		a.metrics.AssessmentLatencyObserve(time.Since(start).Seconds())
	}()

	if err := record.Validate(); err != nil {
		a.metrics.AssessmentFailureInc()
		log.Debug().Err(err).Msg("Rejected assessment input")
		return nil, err
	}

	id := uuid.New().String()
	result, err := a.predictor.Predict(ctx, record)
	if err != nil {
		a.metrics.AssessmentFailureInc()
		log.Error().Err(err).Str("assessment_id", id).Msg("Assessment failed")
		return nil, err
	}

	verdict := risk.Decide(result.Mean.Repay, record.LoanAmount, a.thresholds)

	a.metrics.AssessmentInc()
	a.metrics.MeanRepayObserve(verdict.MeanRepay)
	a.metrics.VerdictInc(verdict.Category.Key())

	log.Info().
		Str("assessment_id", id).
		Float64("mean_repay", verdict.MeanRepay).
		Int("models_used", result.Used).
		Int("models_failed", len(result.Outcomes)-result.Used).
		Str("category", verdict.Category.Key()).
		Str("suggested_limit", verdict.SuggestedLimit.StringFixed(2)).
		Msg("Assessment completed")

	return &Assessment{
		ID:         id,
		Timestamp:  a.now().UTC(),
		Input:      record,
		Prediction: result,
		Verdict:    verdict,
	}, nil
}

type noopMetrics struct{}

func (noopMetrics) AssessmentInc()                   {}
func (noopMetrics) AssessmentFailureInc()            {}
func (noopMetrics) AssessmentLatencyObserve(float64) {}
func (noopMetrics) MeanRepayObserve(float64)         {}
func (noopMetrics) VerdictInc(string)                {}
