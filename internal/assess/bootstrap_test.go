package assess

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-risk/internal/cfg"
	"credit-risk/internal/common"
	"credit-risk/internal/dataset"
	"credit-risk/internal/features"
	"credit-risk/internal/ml"
)

func bootstrapSettings(t *testing.T) cfg.Settings {
	t.Helper()
	dir := t.TempDir()

	train := filepath.Join(dir, "train.csv")
	require.NoError(t, os.WriteFile(train, []byte("income,age,loan,label\n"+
		"30000,25,2000,1\n"+
		"50000,40,5000,0\n"+
		"70000,55,8000,0\n"), 0o600))

	lr := filepath.Join(dir, "lr.json")
	require.NoError(t, os.WriteFile(lr, []byte(`{"kind":"logistic_regression","params":{"coef":[-1,0,0.5],"intercept":-1}}`), 0o600))

	hard := filepath.Join(dir, "svm.json")
	require.NoError(t, os.WriteFile(hard, []byte(`{"kind":"svm","params":{"kernel":"linear","support_vectors":[[1,0,0]],"dual_coef":[1],"intercept":0}}`), 0o600))

	return cfg.Settings{
		Models: []ml.ModelSpec{
			{Name: "Logistic", Location: lr},
			{Name: "SVM", Location: hard},
			{Name: "Missing", Location: filepath.Join(dir, "missing.json")},
		},
		TrainingDataPath:      train,
		TrainingDataFormat:    dataset.FormatAuto,
		FeatureOrder:          common.DefaultFeatureOrder(),
		ThresholdLowModerate:  70,
		ThresholdModerateHigh: 50,
		RemoteModelTimeout:    time.Second,
	}
}

func TestBootstrap(t *testing.T) {
	s := bootstrapSettings(t)

	p, err := Bootstrap(context.Background(), s, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Logistic"}, p.Registry.Names())
	assert.Len(t, p.Registry.Failures(), 1)
	assert.Len(t, p.Registry.Rejections(), 1)

	a, err := p.Assessor.Assess(context.Background(), features.FeatureRecord{Income: 50000, Age: 40, LoanAmount: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Prediction.Used)
	assert.InDelta(t, 0.5, p.Assessor.Thresholds().ModerateHigh, 1e-9)
}

func TestBootstrap_MissingTrainingData(t *testing.T) {
	s := bootstrapSettings(t)
	s.TrainingDataPath = filepath.Join(t.TempDir(), "nope.csv")

	_, err := Bootstrap(context.Background(), s, nil, nil)
	assert.ErrorIs(t, err, common.ErrDataUnavailable)
}

func TestBootstrap_NoUsableModels(t *testing.T) {
	s := bootstrapSettings(t)
	s.Models = s.Models[1:]

	p, err := Bootstrap(context.Background(), s, nil, nil)
	assert.ErrorIs(t, err, common.ErrNoUsableModels)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Registry.Len())
	assert.Nil(t, p.Assessor)
}
