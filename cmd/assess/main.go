package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"credit-risk/internal/assess"
	"credit-risk/internal/cfg"
	"credit-risk/internal/features"
	"credit-risk/internal/report"
)

func main() {
	// Parse command line arguments
	var (
		income     = flag.Float64("income", 50000, "Annual income")
		age        = flag.Int("age", 40, "Applicant age (18-100)")
		loan       = flag.Float64("loan", 5000, "Requested loan amount")
		models     = flag.String("models", "", "Model list Name=path,... (overrides config)")
		train      = flag.String("train", "", "Training split path (overrides config)")
		dataFormat = flag.String("format", "", "Training split format: auto, csv, json, boltdb")
		asJSON     = flag.Bool("json", false, "Print the assessment as JSON")
		logLevel   = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Override config with command line arguments
	if *models != "" {
		specs, err := cfg.ParseModelFiles(*models)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -models value")
		}
		config.Models = specs
	}
	if *train != "" {
		config.TrainingDataPath = *train
	}
	if *dataFormat != "" {
		config.TrainingDataFormat = *dataFormat
	}

	ctx := context.Background()
	p, err := assess.Bootstrap(ctx, config, nil, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Startup failed")
	}

	a, err := p.Assessor.Assess(ctx, features.FeatureRecord{Income: *income, Age: *age, LoanAmount: *loan})
	if err != nil {
		log.Fatal().Err(err).Msg("Assessment failed")
	}

	view := report.NewView(a, config.CurrencySymbol)
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(view)
	} else {
		err = report.WriteSummary(os.Stdout, view)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
}
