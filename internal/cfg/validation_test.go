package cfg

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"credit-risk/internal/common"
	"credit-risk/internal/ml"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		Models:                []ml.ModelSpec{{Name: "MLP", Location: "models/mlp.json"}},
		TrainingDataPath:      "data/train.csv",
		TrainingDataFormat:    "auto",
		FeatureOrder:          common.DefaultFeatureOrder(),
		ThresholdLowModerate:  70,
		ThresholdModerateHigh: 50,
		HTTPPort:              8501,
		RemoteModelTimeout:    5 * time.Second,
		CurrencySymbol:        "R$",
		LogLevel:              "info",
		LogFormat:             "console",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	if err := validateSettings(createValidSettings()); err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_Models(t *testing.T) {
	testCases := []struct {
		name    string
		models  []ml.ModelSpec
		wantErr bool
	}{
		{"none", nil, true},
		{"missing name", []ml.ModelSpec{{Location: "a.json"}}, true},
		{"missing location", []ml.ModelSpec{{Name: "A"}}, true},
		{"remote", []ml.ModelSpec{{Name: "A", Location: "https://scorer/predict"}}, false},
		// duplicates are reported by the registry, not rejected here
		{"duplicate names", []ml.ModelSpec{{Name: "A", Location: "a.json"}, {Name: "A", Location: "b.json"}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.Models = tc.models

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_Thresholds(t *testing.T) {
	testCases := []struct {
		name         string
		lowModerate  float64
		moderateHigh float64
		wantErr      bool
	}{
		{"defaults", 70, 50, false},
		{"equal", 60, 60, false},
		{"full range", 100, 0, false},
		{"inverted", 50, 70, true},
		{"above 100", 101, 50, true},
		{"negative", 70, -1, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.ThresholdLowModerate = tc.lowModerate
			settings.ThresholdModerateHigh = tc.moderateHigh

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid thresholds")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidHTTPPort(t *testing.T) {
	testCases := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"privileged", 80, true},
		{"minimum valid", 1024, false},
		{"default", 8501, false},
		{"maximum valid", 65535, false},
		{"too high", 65536, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.HTTPPort = tc.port

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid HTTP port")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid HTTP port, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_InvalidRemoteTimeout(t *testing.T) {
	testCases := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"too short", 50 * time.Millisecond, true},
		{"minimum valid", 100 * time.Millisecond, false},
		{"normal", 5 * time.Second, false},
		{"maximum valid", time.Minute, false},
		{"too long", 2 * time.Minute, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.RemoteModelTimeout = tc.timeout

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid remote timeout")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error for valid remote timeout, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_FeatureOrder(t *testing.T) {
	testCases := []struct {
		name    string
		order   []string
		wantErr bool
	}{
		{"default", []string{"income", "age", "loan"}, false},
		{"permuted", []string{"loan", "age", "income"}, false},
		{"missing feature", []string{"income", "age"}, true},
		{"repeated feature", []string{"income", "income", "loan"}, true},
		{"unknown feature", []string{"income", "age", "score"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := createValidSettings()
			settings.FeatureOrder = tc.order

			err := validateSettings(settings)
			if tc.wantErr && err == nil {
				t.Error("Expected error for invalid feature order")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestValidateSettings_Logging(t *testing.T) {
	settings := createValidSettings()
	settings.LogLevel = "verbose"
	if err := validateSettings(settings); err == nil {
		t.Error("Expected error for unknown log level")
	}

	settings = createValidSettings()
	settings.LogFormat = "xml"
	if err := validateSettings(settings); err == nil {
		t.Error("Expected error for unknown log format")
	}
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}()

	var buf bytes.Buffer
	settings := createValidSettings()
	settings.LogLevel = "warn"
	settings.LogFormat = "json"

	if err := SetupLogging(*settings, &buf); err != nil {
		t.Fatalf("SetupLogging failed: %v", err)
	}

	log.Info().Msg("hidden")
	log.Warn().Str("model", "MLP").Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"model":"MLP"`) || !strings.Contains(out, `"level":"warn"`) {
		t.Errorf("expected structured warn line, got %q", out)
	}

	settings.LogLevel = ""
	if err := SetupLogging(*settings, &buf); err == nil {
		t.Error("Expected error for empty log level")
	}
}
