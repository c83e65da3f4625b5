package ml

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact kinds.
const (
	KindLogisticRegression = "logistic_regression"
	KindDecisionTree       = "decision_tree"
	KindRandomForest       = "random_forest"
	KindMLP                = "mlp"
	KindSVM                = "svm"
	KindRemote             = "remote"
)

// Artifact encodings.
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

type svmParams struct {
	SVM         `yaml:",inline"`
	Probability bool    `json:"probability" yaml:"probability"`
	ProbA       float64 `json:"prob_a" yaml:"prob_a"`
	ProbB       float64 `json:"prob_b" yaml:"prob_b"`
}

// LoadArtifact reads and decodes the model artifact at path. The encoding is
// taken from the extension; anything but .yaml/.yml is read as JSON.
func LoadArtifact(path string) (Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	enc := EncodingJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc = EncodingYAML
	}
	return DecodeArtifact(f, enc)
}

// DecodeArtifact decodes a {kind, params} document and validates the model shape.
func DecodeArtifact(r io.Reader, encoding string) (Classifier, error) {
	var (
		kind   string
		decode func(v any) error
	)

	switch encoding {
	case EncodingJSON:
		var env struct {
			Kind   string          `json:"kind"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r).Decode(&env); err != nil {
			return nil, fmt.Errorf("parse artifact: %w", err)
		}
		kind = env.Kind
		decode = func(v any) error {
			if len(env.Params) == 0 {
				return fmt.Errorf("missing params")
			}
			return json.Unmarshal(env.Params, v)
		}
	case EncodingYAML:
		var env struct {
			Kind   string    `yaml:"kind"`
			Params yaml.Node `yaml:"params"`
		}
		if err := yaml.NewDecoder(r).Decode(&env); err != nil {
			return nil, fmt.Errorf("parse artifact: %w", err)
		}
		kind = env.Kind
		decode = func(v any) error {
			if env.Params.Kind == 0 {
				return fmt.Errorf("missing params")
			}
			return env.Params.Decode(v)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact encoding %q", encoding)
	}

	model, err := decodeKind(kind, decode)
	if err != nil {
		return nil, fmt.Errorf("decode %s artifact: %w", kind, err)
	}
	return model, nil
}

func decodeKind(kind string, decode func(v any) error) (Classifier, error) {
	switch kind {
	case KindLogisticRegression:
		m := &LogisticRegression{}
		if err := decode(m); err != nil {
			return nil, err
		}
		return m, m.validate()

	case KindDecisionTree:
		t := &DecisionTree{}
		if err := decode(t); err != nil {
			return nil, err
		}
		return t, t.validate()

	case KindRandomForest:
		f := &RandomForest{}
		if err := decode(f); err != nil {
			return nil, err
		}
		return f, f.validate()

	case KindMLP:
		var p struct {
			Layers []Layer `json:"layers" yaml:"layers"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return NewMLP(p.Layers)

	case KindSVM:
		var p svmParams
		if err := decode(&p); err != nil {
			return nil, err
		}
		svm := p.SVM
		if err := svm.validate(); err != nil {
			return nil, err
		}
		if !p.Probability {
			return &svm, nil
		}
		if !finite(p.ProbA, p.ProbB) {
			return nil, fmt.Errorf("svm: platt parameters must be finite")
		}
		return &CalibratedSVM{SVM: &svm, ProbA: p.ProbA, ProbB: p.ProbB}, nil

	case "":
		return nil, fmt.Errorf("artifact has no kind")

	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
}
