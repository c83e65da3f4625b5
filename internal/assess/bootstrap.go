package assess

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"credit-risk/internal/cfg"
	"credit-risk/internal/dataset"
	"credit-risk/internal/features"
	"credit-risk/internal/ml"
)

// Pipeline is everything built at startup from the settings.
type Pipeline struct {
	Scaler   *features.Scaler
	Registry *ml.Registry
	Voter    *ml.SoftVoter
	Assessor *Assessor
}

// Bootstrap fits the scaler on the training split, loads the model registry
// and wires the soft vote into an assessor. A missing training split or an
// empty registry is returned as an error; the registry is still returned in
// the latter case so callers can report what failed.
func Bootstrap(ctx context.Context, s cfg.Settings, mlMetrics ml.MetricsInterface, m MetricsInterface) (*Pipeline, error) {
	thresholds, err := s.Thresholds()
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}

	samples, err := dataset.LoadTrainingFeatures(s.TrainingDataPath, s.TrainingDataFormat)
	if err != nil {
		return nil, fmt.Errorf("load training split: %w", err)
	}
	scaler, err := features.Fit(samples, s.FeatureOrder)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	log.Info().
		Int("samples", len(samples)).
		Strs("order", s.FeatureOrder).
		Msg("Scaler fitted")

	p := &Pipeline{Scaler: scaler}

	p.Registry, err = ml.LoadRegistry(ctx, s.Models, s.RegistryOptions())
	if err != nil {
		return p, err
	}

	p.Voter, err = ml.NewSoftVoter(scaler, p.Registry, mlMetrics)
	if err != nil {
		return p, err
	}
	p.Assessor = New(p.Voter, thresholds, m)
	return p, nil
}
