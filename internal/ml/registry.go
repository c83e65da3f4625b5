package ml

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"credit-risk/internal/common"
)

// ModelSpec names one configured model and where its artifact lives. Location
// is a file path or an http(s) URL of a remote model server.
type ModelSpec struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}

// LoadFailure records a configured model that could not be loaded.
type LoadFailure struct {
	Name     string
	Location string
	Err      error
}

func (f LoadFailure) Error() string {
	return fmt.Sprintf("model %s (%s): %v", f.Name, f.Location, f.Err)
}

func (f LoadFailure) Unwrap() error { return f.Err }

// Rejection records a model that loaded but cannot report probabilities.
type Rejection struct {
	Name string
	Kind string
	Err  error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("model %s (%s): %v", r.Name, r.Kind, r.Err)
}

func (r Rejection) Unwrap() error { return r.Err }

// RegisteredModel is a usable model together with its configured name.
type RegisteredModel struct {
	Name     string
	Location string
	Model    ProbabilityClassifier
}

// RegistryOptions tunes LoadRegistry.
type RegistryOptions struct {
	// RemoteTimeout bounds each request to a remote model. Zero uses the client default.
	RemoteTimeout time.Duration
}

// Registry is the ordered set of probability-capable models. It is read-only
// once built and safe for concurrent use.
type Registry struct {
	models     []RegisteredModel
	index      map[string]int
	failures   []LoadFailure
	rejections []Rejection
}

// NewRegistry builds a registry from already constructed models. Later
// duplicates of a name are ignored.
func NewRegistry(models ...RegisteredModel) *Registry {
	r := &Registry{index: make(map[string]int, len(models))}
	for _, m := range models {
		if _, dup := r.index[m.Name]; dup || m.Model == nil {
			continue
		}
		r.index[m.Name] = len(r.models)
		r.models = append(r.models, m)
	}
	return r
}

// LoadRegistry loads every spec in order. Models that fail to load or lack
// probability support are recorded and skipped. When nothing usable remains
// the registry is still returned for inspection together with ErrNoUsableModels.
func LoadRegistry(ctx context.Context, specs []ModelSpec, opts RegistryOptions) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(specs))}

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return r, err
		}

		if _, dup := r.index[spec.Name]; dup || r.failed(spec.Name) || r.rejected(spec.Name) {
			r.fail(spec, fmt.Errorf("duplicate model name %q", spec.Name))
			continue
		}

		model, err := locate(spec, opts)
		if err != nil {
			r.fail(spec, err)
			continue
		}

		pc, ok := model.(ProbabilityClassifier)
		if !ok {
			rej := Rejection{Name: spec.Name, Kind: model.Kind(), Err: common.ErrNoProbabilitySupport}
			r.rejections = append(r.rejections, rej)
			log.Warn().
				Str("model", spec.Name).
				Str("kind", model.Kind()).
				Msg("Model does not support probability estimates, ignoring it")
			continue
		}

		r.index[spec.Name] = len(r.models)
		r.models = append(r.models, RegisteredModel{Name: spec.Name, Location: spec.Location, Model: pc})
		log.Info().
			Str("model", spec.Name).
			Str("kind", pc.Kind()).
			Str("location", spec.Location).
			Msg("Model loaded")
	}

	if len(r.models) == 0 {
		return r, fmt.Errorf("%w: %d configured, %d failed, %d rejected",
			common.ErrNoUsableModels, len(specs), len(r.failures), len(r.rejections))
	}
	return r, nil
}

func locate(spec ModelSpec, opts RegistryOptions) (Classifier, error) {
	if isRemote(spec.Location) {
		return NewRemoteClassifier(spec.Location, opts.RemoteTimeout), nil
	}
	if _, err := os.Stat(spec.Location); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}
	model, err := LoadArtifact(spec.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}
	return model, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func (r *Registry) fail(spec ModelSpec, err error) {
	r.failures = append(r.failures, LoadFailure{Name: spec.Name, Location: spec.Location, Err: err})
	log.Error().
		Err(err).
		Str("model", spec.Name).
		Str("location", spec.Location).
		Msg("Failed to load model")
}

func (r *Registry) failed(name string) bool {
	for _, f := range r.failures {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (r *Registry) rejected(name string) bool {
	for _, rej := range r.rejections {
		if rej.Name == name {
			return true
		}
	}
	return false
}

// Models returns the usable models in configured order.
func (r *Registry) Models() []RegisteredModel {
	return append([]RegisteredModel(nil), r.models...)
}

// Names returns the usable model names in configured order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.models))
	for i, m := range r.models {
		names[i] = m.Name
	}
	return names
}

func (r *Registry) Len() int { return len(r.models) }

func (r *Registry) Failures() []LoadFailure {
	return append([]LoadFailure(nil), r.failures...)
}

func (r *Registry) Rejections() []Rejection {
	return append([]Rejection(nil), r.rejections...)
}

// Get looks a usable model up by name.
func (r *Registry) Get(name string) (ProbabilityClassifier, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.models[i].Model, true
}
