package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"credit-risk/internal/common"
	"credit-risk/internal/features"
	"credit-risk/internal/ml"
	"credit-risk/internal/storage"
)

type artifact struct {
	Kind   string `json:"kind" yaml:"kind"`
	Params any    `json:"params" yaml:"params"`
}

func main() {
	var (
		dataPath  = flag.String("data", "data", "Output directory")
		rows      = flag.Int("rows", 1000, "Number of applicants to generate")
		seed      = flag.Int64("seed", 42, "Random seed")
		withBolt  = flag.Bool("boltdb", false, "Also write the training split to a BoltDB file")
		hardLabel = flag.Bool("hard-label-svm", false, "Write the SVM without probability calibration")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rng := rand.New(rand.NewSource(*seed))
	records, labels := generateApplicants(rng, *rows)

	if err := os.MkdirAll(filepath.Join(*dataPath, "models"), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	csvPath := filepath.Join(*dataPath, "train.csv")
	if err := writeCSV(csvPath, records, labels); err != nil {
		log.Fatal().Err(err).Msg("Failed to write training CSV")
	}
	log.Info().Str("path", csvPath).Int("rows", len(records)).Msg("Training split written")

	if *withBolt {
		boltPath := filepath.Join(*dataPath, "train.db")
		if err := writeBolt(boltPath, records); err != nil {
			log.Fatal().Err(err).Msg("Failed to write training BoltDB")
		}
		log.Info().Str("path", boltPath).Msg("Training split written")
	}

	for name, a := range sampleModels(*hardLabel) {
		path := filepath.Join(*dataPath, "models", name)
		if err := writeArtifact(path, a); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write model artifact")
		}
		log.Info().Str("path", path).Str("kind", a.Kind).Msg("Model artifact written")
	}

	fmt.Printf("✓ Generated %d applicants and sample models under %s\n", len(records), *dataPath)
}

// generateApplicants draws applicants and labels them with a noisy rule where
// default becomes likelier as the loan grows relative to income.
func generateApplicants(rng *rand.Rand, n int) ([]features.FeatureRecord, []int) {
	records := make([]features.FeatureRecord, 0, n)
	labels := make([]int, 0, n)

	for i := 0; i < n; i++ {
		income := math.Round(math.Max(8000, rng.NormFloat64()*20000+55000))
		age := common.MinApplicantAge + rng.Intn(common.MaxApplicantAge-common.MinApplicantAge-20)
		loan := math.Round(math.Max(500, rng.NormFloat64()*3000+6000))

		ratio := loan / income
		z := 12*ratio - 0.02*float64(age-40) - 1.2 + rng.NormFloat64()*0.5
		label := ml.ClassRepay
		if rng.Float64() < 1/(1+math.Exp(-z)) {
			label = ml.ClassDefault
		}

		records = append(records, features.FeatureRecord{Income: income, Age: age, LoanAmount: loan})
		labels = append(labels, label)
	}
	return records, labels
}

func writeCSV(path string, records []features.FeatureRecord, labels []int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"income", "age", "loan", "label"}); err != nil {
		return err
	}
	for i, r := range records {
		row := []string{
			strconv.FormatFloat(r.Income, 'f', 2, 64),
			strconv.Itoa(r.Age),
			strconv.FormatFloat(r.LoanAmount, 'f', 2, 64),
			strconv.Itoa(labels[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeBolt(path string, records []features.FeatureRecord) error {
	store, err := storage.New(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.PutFeatures(records)
}

func writeArtifact(path string, a artifact) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(a)
	default:
		data, err = json.MarshalIndent(a, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// sampleModels returns hand-set classifiers over standardized
// (income, age, loan) inputs. A positive score means default.
func sampleModels(hardLabelSVM bool) map[string]artifact {
	svm := map[string]any{
		"kernel":          ml.KernelLinear,
		"support_vectors": [][]float64{{-1.0, -0.2, 1.0}},
		"dual_coef":       []float64{1.0},
		"intercept":       -0.4,
	}
	if !hardLabelSVM {
		svm["probability"] = true
		svm["prob_a"] = -1.8
		svm["prob_b"] = 0.1
	}

	stump := func(threshold float64, left, right []float64) *ml.DecisionTree {
		return &ml.DecisionTree{
			ChildrenLeft:  []int{1, -1, -1},
			ChildrenRight: []int{2, -1, -1},
			Feature:       []int{2, -2, -2},
			Threshold:     []float64{threshold, -2, -2},
			Value:         [][]float64{{100, 40}, left, right},
		}
	}

	return map[string]artifact{
		"mlp.json": {Kind: ml.KindMLP, Params: map[string]any{
			"layers": []ml.Layer{
				{Weights: [][]float64{{-1.2, -0.3, 1.4}, {0.4, 0.1, -0.2}}, Biases: []float64{-0.2, 0.1}},
				{Weights: [][]float64{{1.5, -0.8}}, Biases: []float64{-0.6}},
			},
		}},
		"svm.json": {Kind: ml.KindSVM, Params: svm},
		"dt.json":  {Kind: ml.KindDecisionTree, Params: stump(0.3, []float64{85, 15}, []float64{15, 25})},
		"rf.json": {Kind: ml.KindRandomForest, Params: &ml.RandomForest{Trees: []*ml.DecisionTree{
			stump(0.0, []float64{70, 10}, []float64{30, 30}),
			stump(0.5, []float64{90, 20}, []float64{10, 20}),
			stump(-0.5, []float64{40, 5}, []float64{60, 35}),
		}}},
		"lr.yaml": {Kind: ml.KindLogisticRegression, Params: &ml.LogisticRegression{
			Coef:      []float64{-1.0, -0.3, 1.2},
			Intercept: -0.5,
		}},
	}
}
