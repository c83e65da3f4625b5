package common

import "time"

// Feature names, in the order the reference training split was exported.
const (
	FeatureIncome = "income"
	FeatureAge    = "age"
	FeatureLoan   = "loan"
)

// Environment variable keys
const (
	EnvConfigFile                = "CONFIG_FILE"
	EnvModelFiles                = "MODEL_FILES"
	EnvTrainingDataPath          = "TRAINING_DATA_PATH"
	EnvTrainingDataFormat        = "TRAINING_DATA_FORMAT"
	EnvFeatureOrder              = "FEATURE_ORDER"
	EnvRiskThresholdLowModerate  = "RISK_THRESHOLD_LOW_MODERATE"
	EnvRiskThresholdModerateHigh = "RISK_THRESHOLD_MODERATE_HIGH"
	EnvHTTPPort                  = "HTTP_PORT"
	EnvRemoteModelTimeout        = "REMOTE_MODEL_TIMEOUT"
	EnvCurrencySymbol            = "CURRENCY_SYMBOL"
	EnvLogLevel                  = "LOG_LEVEL"
	EnvLogFormat                 = "LOG_FORMAT"
)

// Configuration defaults
const (
	DefaultModelDir                  = "data/models"
	DefaultTrainingDataPath          = "data/train.csv"
	DefaultTrainingDataFormat        = "auto"
	DefaultRiskThresholdLowModerate  = 70.0
	DefaultRiskThresholdModerateHigh = 50.0
	DefaultHTTPPort                  = 8501
	DefaultRemoteModelTimeout        = 5 * time.Second
	DefaultCurrencySymbol            = "R$"
	DefaultLogLevel                  = "info"
	DefaultLogFormat                 = "console"
)

// Input validation bounds
const (
	MinApplicantAge = 18
	MaxApplicantAge = 100
)

// Validation constants
const (
	MinHTTPPort           = 1024
	MaxHTTPPort           = 65535
	MinRemoteModelTimeout = 100 * time.Millisecond
	MaxRemoteModelTimeout = time.Minute
)

// DefaultFeatureOrder returns the column order the scaler was fitted with.
func DefaultFeatureOrder() []string {
	return []string{FeatureIncome, FeatureAge, FeatureLoan}
}
