package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-path/internal/config"
	"github.com/jonathan/career-path/internal/logger"
	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/observability"
)

var checkArtifactsCmd = &cobra.Command{
	Use:   "check-artifacts",
	Short: "Validate the model artifacts and print their shape",
	Long:  "Load every model artifact, validate it against its schema and check that the pieces agree on feature width and class count.",
	RunE:  runCheckArtifacts,
}

var checkConfigFile string

func init() {
	checkArtifactsCmd.Flags().StringVar(&checkConfigFile, "config", "", "Path to a config.yaml")
	rootCmd.AddCommand(checkArtifactsCmd)
}

func runCheckArtifacts(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{ConfigFile: checkConfigFile, SkipAuth: true})
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

	bundle, err := model.Load(ctx, modelPaths(cfg.Model), objects)
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintBundleSummary(bundle)
	if err != nil {
		return fmt.Errorf("artifact check failed: %w", err)
	}
	return nil
}
