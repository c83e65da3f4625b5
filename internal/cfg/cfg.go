package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"credit-risk/internal/common"
	"credit-risk/internal/dataset"
	"credit-risk/internal/features"
	"credit-risk/internal/ml"
	"credit-risk/internal/risk"
)

type Settings struct {
	Models                []ml.ModelSpec
	TrainingDataPath      string
	TrainingDataFormat    string
	FeatureOrder          []string
	ThresholdLowModerate  float64 // percent
	ThresholdModerateHigh float64 // percent
	HTTPPort              int
	RemoteModelTimeout    time.Duration
	CurrencySymbol        string
	LogLevel              string
	LogFormat             string
}

type ConfigFile struct {
	Models []ml.ModelSpec `yaml:"models"`

	Training struct {
		Path   string `yaml:"path"`
		Format string `yaml:"format"`
	} `yaml:"training"`

	Features struct {
		Order []string `yaml:"order"`
	} `yaml:"features"`

	Risk struct {
		LowModerate  *float64 `yaml:"lowModerate"`
		ModerateHigh *float64 `yaml:"moderateHigh"`
	} `yaml:"risk"`

	Server struct {
		HTTPPort           int    `yaml:"httpPort"`
		RemoteModelTimeout string `yaml:"remoteModelTimeout"`
		CurrencySymbol     string `yaml:"currencySymbol"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultModelSpecs returns the four classifiers shipped with the service.
func DefaultModelSpecs() []ml.ModelSpec {
	return []ml.ModelSpec{
		{Name: "MLP", Location: common.DefaultModelDir + "/mlp.json"},
		{Name: "SVM", Location: common.DefaultModelDir + "/svm.json"},
		{Name: "DecisionTree", Location: common.DefaultModelDir + "/dt.json"},
		{Name: "RandomForest", Location: common.DefaultModelDir + "/rf.json"},
	}
}

// Load reads .env when present, then the YAML file named by CONFIG_FILE with
// environment overrides, or the environment alone.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	remoteTimeout, err := time.ParseDuration(config.Server.RemoteModelTimeout)
	if err != nil {
		remoteTimeout = common.DefaultRemoteModelTimeout
	}

	models := config.Models
	if len(models) == 0 {
		models = DefaultModelSpecs()
	}
	models, err = getModelsFromEnvOrConfig(models)
	if err != nil {
		return Settings{}, err
	}

	order := config.Features.Order
	if len(order) == 0 {
		order = common.DefaultFeatureOrder()
	}

	settings := Settings{
		Models:                models,
		TrainingDataPath:      getEnvOrDefault(common.EnvTrainingDataPath, orDefault(config.Training.Path, common.DefaultTrainingDataPath)),
		TrainingDataFormat:    getEnvOrDefault(common.EnvTrainingDataFormat, orDefault(config.Training.Format, common.DefaultTrainingDataFormat)),
		FeatureOrder:          splitOrDefault(os.Getenv(common.EnvFeatureOrder), order),
		ThresholdLowModerate:  getFloatOrDefault(common.EnvRiskThresholdLowModerate, floatOrDefault(config.Risk.LowModerate, common.DefaultRiskThresholdLowModerate)),
		ThresholdModerateHigh: getFloatOrDefault(common.EnvRiskThresholdModerateHigh, floatOrDefault(config.Risk.ModerateHigh, common.DefaultRiskThresholdModerateHigh)),
		HTTPPort:              getIntFromEnvOrConfig(common.EnvHTTPPort, config.Server.HTTPPort, common.DefaultHTTPPort),
		RemoteModelTimeout:    getDurationOrDefault(common.EnvRemoteModelTimeout, remoteTimeout),
		CurrencySymbol:        getEnvOrDefault(common.EnvCurrencySymbol, orDefault(config.Server.CurrencySymbol, common.DefaultCurrencySymbol)),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, orDefault(config.Logging.Level, common.DefaultLogLevel)),
		LogFormat:             getEnvOrDefault(common.EnvLogFormat, orDefault(config.Logging.Format, common.DefaultLogFormat)),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	models, err := getModelsFromEnvOrConfig(DefaultModelSpecs())
	if err != nil {
		return Settings{}, err
	}

	settings := Settings{
		Models:                models,
		TrainingDataPath:      getEnvOrDefault(common.EnvTrainingDataPath, common.DefaultTrainingDataPath),
		TrainingDataFormat:    getEnvOrDefault(common.EnvTrainingDataFormat, common.DefaultTrainingDataFormat),
		FeatureOrder:          splitOrDefault(os.Getenv(common.EnvFeatureOrder), common.DefaultFeatureOrder()),
		ThresholdLowModerate:  getFloatOrDefault(common.EnvRiskThresholdLowModerate, common.DefaultRiskThresholdLowModerate),
		ThresholdModerateHigh: getFloatOrDefault(common.EnvRiskThresholdModerateHigh, common.DefaultRiskThresholdModerateHigh),
		HTTPPort:              getIntOrDefault(common.EnvHTTPPort, common.DefaultHTTPPort),
		RemoteModelTimeout:    getDurationOrDefault(common.EnvRemoteModelTimeout, common.DefaultRemoteModelTimeout),
		CurrencySymbol:        getEnvOrDefault(common.EnvCurrencySymbol, common.DefaultCurrencySymbol),
		LogLevel:              getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:             getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

// Thresholds converts the configured percentages into decision thresholds.
func (s *Settings) Thresholds() (risk.Thresholds, error) {
	return risk.NewThresholdsFromPercent(s.ThresholdLowModerate, s.ThresholdModerateHigh)
}

// RegistryOptions returns the model loading options.
func (s *Settings) RegistryOptions() ml.RegistryOptions {
	return ml.RegistryOptions{RemoteTimeout: s.RemoteModelTimeout}
}

// ParseModelFiles parses "Name=location,Name=location". Locations may contain '='.
func ParseModelFiles(v string) ([]ml.ModelSpec, error) {
	var specs []ml.ModelSpec
	for _, entry := range strings.Split(v, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, location, ok := strings.Cut(entry, "=")
		name, location = strings.TrimSpace(name), strings.TrimSpace(location)
		if !ok || name == "" || location == "" {
			return nil, fmt.Errorf("invalid model entry %q, expected Name=location", entry)
		}
		specs = append(specs, ml.ModelSpec{Name: name, Location: location})
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%s lists no models", common.EnvModelFiles)
	}
	return specs, nil
}

func getModelsFromEnvOrConfig(configModels []ml.ModelSpec) ([]ml.ModelSpec, error) {
	if env := os.Getenv(common.EnvModelFiles); env != "" {
		return ParseModelFiles(env)
	}
	return configModels, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, defaultValue string) string {
	if v != "" {
		return v
	}
	return defaultValue
}

func floatOrDefault(v *float64, defaultValue float64) float64 {
	if v != nil {
		return *v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func splitOrDefault(v string, def []string) []string {
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate models
	if len(settings.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	for i, m := range settings.Models {
		if m.Name == "" || m.Location == "" {
			return fmt.Errorf("model %d: name and location are required", i)
		}
	}

	// Validate training data
	if settings.TrainingDataPath == "" {
		return fmt.Errorf("training data path cannot be empty")
	}
	switch settings.TrainingDataFormat {
	case dataset.FormatAuto, dataset.FormatCSV, dataset.FormatJSON, dataset.FormatBoltDB:
	default:
		return fmt.Errorf("training data format must be one of auto, csv, json, boltdb, got %q", settings.TrainingDataFormat)
	}

	if err := features.ValidateOrder(settings.FeatureOrder); err != nil {
		return fmt.Errorf("invalid feature order: %w", err)
	}

	// Validate thresholds
	if _, err := settings.Thresholds(); err != nil {
		return err
	}

	// Validate server values
	if settings.HTTPPort < common.MinHTTPPort || settings.HTTPPort > common.MaxHTTPPort {
		return fmt.Errorf("HTTP port must be between %d and %d, got %d", common.MinHTTPPort, common.MaxHTTPPort, settings.HTTPPort)
	}
	if settings.RemoteModelTimeout < common.MinRemoteModelTimeout || settings.RemoteModelTimeout > common.MaxRemoteModelTimeout {
		return fmt.Errorf("remote model timeout must be between %v and %v, got %v",
			common.MinRemoteModelTimeout, common.MaxRemoteModelTimeout, settings.RemoteModelTimeout)
	}

	// Validate logging
	if _, err := ParseLogLevel(settings.LogLevel); err != nil {
		return err
	}
	if settings.LogFormat != "console" && settings.LogFormat != "json" {
		return fmt.Errorf("log format must be console or json, got %q", settings.LogFormat)
	}

	return nil
}
