package ml

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-risk/internal/common"
	"credit-risk/internal/features"
)

type identityScaler struct{}

func (identityScaler) Transform(r features.FeatureRecord) ([]float64, error) {
	return r.Vector(common.DefaultFeatureOrder())
}

type panickingModel struct{ StaticModel }

func (panickingModel) PredictProbability(context.Context, []float64) (Probabilities, error) {
	panic("corrupt weights")
}

type inputRecorder struct {
	StaticModel
	seen []float64
}

func (m *inputRecorder) PredictProbability(_ context.Context, x []float64) (Probabilities, error) {
	m.seen = append([]float64(nil), x...)
	return Probabilities{Repay: 0.5, Default: 0.5}, nil
}

func staticModels(ps ...Probabilities) []RegisteredModel {
	names := []string{"Logistic Regression", "Decision Tree", "Random Forest", "MLP", "SVM"}
	out := make([]RegisteredModel, len(ps))
	for i, p := range ps {
		out[i] = RegisteredModel{Name: names[i], Model: &StaticModel{Probs: p}}
	}
	return out
}

var applicant = features.FeatureRecord{Income: 50000, Age: 30, LoanAmount: 5000}

func newVoter(t *testing.T, metrics MetricsInterface, models ...RegisteredModel) *SoftVoter {
	t.Helper()
	v, err := NewSoftVoter(identityScaler{}, NewRegistry(models...), metrics)
	require.NoError(t, err)
	return v
}

func TestSoftVoter_UnanimousMean(t *testing.T) {
	p := Probabilities{Repay: 0.8, Default: 0.2}
	metrics := NewMockMetrics()
	v := newVoter(t, metrics, staticModels(p, p, p, p)...)

	res, err := v.Predict(context.Background(), applicant)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Used)
	assert.Equal(t, 0.8, res.Mean.Repay)
	assert.Equal(t, 0.2, res.Mean.Default)
	assert.Len(t, res.Outcomes, 4)
	assert.Equal(t, 1, metrics.Inferences("MLP"))
	assert.Equal(t, 1, metrics.VotingObservations())
}

func TestSoftVoter_OneOfFourFails(t *testing.T) {
	models := staticModels(
		Probabilities{Repay: 0.9, Default: 0.1},
		Probabilities{Repay: 0.6, Default: 0.4},
		Probabilities{Repay: 0.3, Default: 0.7},
	)
	models = append(models, RegisteredModel{Name: "Broken", Model: &StaticModel{Err: errors.New("shape mismatch")}})
	metrics := NewMockMetrics()
	v := newVoter(t, metrics, models...)

	res, err := v.Predict(context.Background(), applicant)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Used)
	assert.InDelta(t, 0.6, res.Mean.Repay, 1e-12)
	assert.InDelta(t, 0.4, res.Mean.Default, 1e-12)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "Broken", failures[0].ModelName())
	assert.True(t, errors.Is(failures[0].Err, common.ErrInferenceFailed))
	assert.Equal(t, 1, metrics.Failures("Broken"))

	// failure stays in registry position
	_, isFailure := res.Outcomes[3].(Failure)
	assert.True(t, isFailure)
}

func TestSoftVoter_InvalidModelOutputIsFailure(t *testing.T) {
	models := []RegisteredModel{
		{Name: "Good", Model: &StaticModel{Probs: Probabilities{Repay: 0.4, Default: 0.6}}},
		{Name: "NaN", Model: &StaticModel{Probs: Probabilities{Repay: math.NaN(), Default: 0.5}}},
		{Name: "Overflow", Model: &StaticModel{Probs: Probabilities{Repay: 1.7, Default: -0.7}}},
		{Name: "Panics", Model: &panickingModel{}},
	}
	v := newVoter(t, nil, models...)

	res, err := v.Predict(context.Background(), applicant)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Used)
	assert.Equal(t, 0.4, res.Mean.Repay)
	assert.Len(t, res.Failures(), 3)
}

func TestSoftVoter_AllFail(t *testing.T) {
	boom := errors.New("boom")
	v := newVoter(t, nil,
		RegisteredModel{Name: "A", Model: &StaticModel{Err: boom}},
		RegisteredModel{Name: "B", Model: &StaticModel{Err: boom}},
	)

	res, err := v.Predict(context.Background(), applicant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoPredictionsAvailable))
	require.NotNil(t, res)
	assert.Len(t, res.Failures(), 2)
}

func TestSoftVoter_MeanIsBoundedAndDeterministic(t *testing.T) {
	v := newVoter(t, nil, staticModels(
		Probabilities{Repay: 0.15, Default: 0.85},
		Probabilities{Repay: 0.55, Default: 0.45},
		Probabilities{Repay: 0.95, Default: 0.05},
		Probabilities{Repay: 0.35, Default: 0.65},
		Probabilities{Repay: 0.72, Default: 0.28},
	)...)

	first, err := v.Predict(context.Background(), applicant)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first.Mean.Repay, 0.15)
	assert.LessOrEqual(t, first.Mean.Repay, 0.95)
	assert.InDelta(t, 1.0, first.Mean.Repay+first.Mean.Default, 1e-9)

	for i := 0; i < 5; i++ {
		again, err := v.Predict(context.Background(), applicant)
		require.NoError(t, err)
		assert.Equal(t, first.Mean, again.Mean)
	}
}

func TestSoftVoter_UsesScaledInput(t *testing.T) {
	rec := &inputRecorder{}
	v := newVoter(t, nil, RegisteredModel{Name: "Recorder", Model: rec})

	_, err := v.Predict(context.Background(), applicant)
	require.NoError(t, err)
	assert.Equal(t, []float64{50000, 30, 5000}, rec.seen)
}

func TestSoftVoter_WithFittedScaler(t *testing.T) {
	scaler, err := features.Fit([]features.FeatureRecord{
		{Income: 40000, Age: 30, LoanAmount: 4000},
		{Income: 60000, Age: 50, LoanAmount: 6000},
	}, common.DefaultFeatureOrder())
	require.NoError(t, err)

	rec := &inputRecorder{}
	v, err := NewSoftVoter(scaler, NewRegistry(RegisteredModel{Name: "Recorder", Model: rec}), nil)
	require.NoError(t, err)

	_, err = v.Predict(context.Background(), features.FeatureRecord{Income: 50000, Age: 40, LoanAmount: 5000})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, rec.seen)
}

func TestNewSoftVoter_Validation(t *testing.T) {
	_, err := NewSoftVoter(nil, NewRegistry(staticModels(Probabilities{Repay: 1})...), nil)
	assert.Error(t, err)

	_, err = NewSoftVoter(identityScaler{}, NewRegistry(), nil)
	assert.True(t, errors.Is(err, common.ErrNoUsableModels))
}
