// Package dataset loads the reference training split used to fit the feature scaler.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"credit-risk/internal/common"
	"credit-risk/internal/features"
	"credit-risk/internal/storage"

	"github.com/rs/zerolog/log"
)

// Supported training data formats.
const (
	FormatAuto   = "auto"
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatBoltDB = "boltdb"
)

// columnAliases maps accepted header spellings to feature names.
var columnAliases = map[string]string{
	"income":      common.FeatureIncome,
	"age":         common.FeatureAge,
	"loan":        common.FeatureLoan,
	"loan_amount": common.FeatureLoan,
}

// LoadTrainingFeatures reads the training split at path. Any failure to locate or
// decode the file, or an empty result, is reported as common.ErrDataUnavailable.
func LoadTrainingFeatures(path, format string) ([]features.FeatureRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: training data %s: %v", common.ErrDataUnavailable, path, err)
	}

	resolved, err := ResolveFormat(path, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}

	log.Info().
		Str("path", path).
		Str("format", resolved).
		Msg("Loading training features")

	var records []features.FeatureRecord
	switch resolved {
	case FormatCSV:
		records, err = loadCSV(path)
	case FormatJSON:
		records, err = loadJSON(path)
	case FormatBoltDB:
		records, err = loadBoltDB(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: training data %s contains no usable rows", common.ErrDataUnavailable, path)
	}

	log.Info().
		Int("rows", len(records)).
		Str("path", path).
		Msg("Training features loaded")

	return records, nil
}

// ResolveFormat maps "auto" to a concrete format from the file extension.
func ResolveFormat(path, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatCSV, FormatJSON, FormatBoltDB:
		return strings.ToLower(format), nil
	case "", FormatAuto:
	default:
		return "", fmt.Errorf("unsupported training data format %q", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".db", ".bolt":
		return FormatBoltDB, nil
	default:
		return "", fmt.Errorf("cannot infer training data format from %q", path)
	}
}

func loadCSV(path string) ([]features.FeatureRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range header {
		if name, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[name] = i
		}
	}
	for _, name := range common.DefaultFeatureOrder() {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("CSV header missing column %q", name)
		}
	}

	var records []features.FeatureRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		rec, err := parseRow(row, columns)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping malformed training row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(row []string, columns map[string]int) (features.FeatureRecord, error) {
	values := make(map[string]float64, len(columns))
	for name, idx := range columns {
		if idx >= len(row) {
			return features.FeatureRecord{}, fmt.Errorf("missing value for %s", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return features.FeatureRecord{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		values[name] = v
	}
	return newRecord(values[common.FeatureIncome], values[common.FeatureAge], values[common.FeatureLoan])
}

// jsonRow accepts both the export's "loan" key and the form's "loan_amount".
type jsonRow struct {
	Income     *float64 `json:"income"`
	Age        *float64 `json:"age"`
	Loan       *float64 `json:"loan"`
	LoanAmount *float64 `json:"loan_amount"`
}

func loadJSON(path string) ([]features.FeatureRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}

	var rows []jsonRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	records := make([]features.FeatureRecord, 0, len(rows))
	for i, row := range rows {
		loan := row.Loan
		if loan == nil {
			loan = row.LoanAmount
		}
		if row.Income == nil || row.Age == nil || loan == nil {
			log.Warn().Int("index", i).Msg("Skipping training row with missing fields")
			continue
		}
		rec, err := newRecord(*row.Income, *row.Age, *loan)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed training row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func loadBoltDB(path string) ([]features.FeatureRecord, error) {
	store, err := storage.Open(path, storage.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.Features()
}

func newRecord(income, age, loan float64) (features.FeatureRecord, error) {
	for _, v := range []float64{income, age, loan} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return features.FeatureRecord{}, fmt.Errorf("non-finite value %v", v)
		}
	}
	if age != math.Trunc(age) {
		return features.FeatureRecord{}, fmt.Errorf("age %v is not an integer", age)
	}
	return features.FeatureRecord{Income: income, Age: int(age), LoanAmount: loan}, nil
}
