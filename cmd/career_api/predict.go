package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/logger"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/prediction"
	"github.com/jonathan/career-path/internal/types"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Recommend careers for a profile without starting the server",
	Long:  "Load the model artifacts, encode a profile given by flags or a JSON file, and print the ranked careers.",
	RunE:  runPredict,
}

var (
	predictInputFile      string
	predictConfigFile     string
	predictEducation      string
	predictYears          int
	predictSkills         []string
	predictInterests      []string
	predictCertifications []string
	predictIndustry       string
	predictJSON           bool
)

func init() {
	predictCmd.Flags().StringVarP(&predictInputFile, "in", "i", "", "Path to a CareerInput JSON file (overrides profile flags)")
	predictCmd.Flags().StringVar(&predictConfigFile, "config", "", "Path to a config.yaml")
	predictCmd.Flags().StringVar(&predictEducation, "education", "", "Education level, e.g. \"Bachelor's\"")
	predictCmd.Flags().IntVar(&predictYears, "years", 0, "Years of experience")
	predictCmd.Flags().StringSliceVar(&predictSkills, "skills", nil, "Comma-separated skills")
	predictCmd.Flags().StringSliceVar(&predictInterests, "interests", nil, "Comma-separated interests")
	predictCmd.Flags().StringSliceVar(&predictCertifications, "certifications", nil, "Comma-separated certifications")
	predictCmd.Flags().StringVar(&predictIndustry, "industry", "", "Preferred industry")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	input, err := predictInput()
	if err != nil {
		return err
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	cfg, err := config.Load(config.Options{ConfigFile: predictConfigFile, SkipAuth: true})
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, "console")
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	predictor := prediction.NewPredictor(loadBundle(ctx, cfg, objects, log), cfg.Model.TopK)
	result, err := predictor.Predict(ctx, input)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if predictJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPrediction(result)
	return nil
}

func predictInput() (*types.CareerInput, error) {
	if predictInputFile != "" {
		data, err := os.ReadFile(predictInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		var in types.CareerInput
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, fmt.Errorf("failed to parse input file: %w", err)
		}
		return &in, nil
	}
	return &types.CareerInput{
		Education:         predictEducation,
		YearsExperience:   predictYears,
		Skills:            predictSkills,
		Interests:         predictInterests,
		Certifications:    predictCertifications,
		PreferredIndustry: predictIndustry,
	}, nil
}
