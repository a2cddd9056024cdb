// Package main implements the contractsort CLI: it files vendor folders of
// contracts, answers registry queries and exports registry reports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/contractsort/internal/logging"
	"github.com/cognicore/contractsort/pkg/contractsort/classify"
	"github.com/cognicore/contractsort/pkg/contractsort/config"
	"github.com/cognicore/contractsort/pkg/contractsort/textsource"
)

var (
	// configPath is the optional YAML application config
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contractsort",
	Short: "Classify, rename and file vendor contract folders",
	Long: `contractsort reads every document in a folder of vendor folders, classifies
its type and execution status, extracts its key dates, renames it and files it
into the vendor's final or supporting folder. A tracking registry of
expiration dates is kept in the input folder.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env CONTRACTSORT_* overrides it)")
}

// env is what every command needs: config, logger and the classification pipeline.
type env struct {
	cfg      *config.App
	logger   *zap.Logger
	pipeline *classify.Pipeline
	text     *textsource.Source
}

func setup() (*env, error) {
	cfg, err := config.LoadApp(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	loader := &config.Loader{
		PatternsPath:   cfg.Tables.Patterns,
		VendorsPath:    cfg.Tables.Vendors,
		MatchThreshold: cfg.Processing.MatchThreshold,
		Logger:         logger,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	if comp.Vendors.Len() > 0 {
		logger.Info("vendor master list loaded", zap.Int("vendors", comp.Vendors.Len()))
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		pipeline: classify.FromComponents(comp),
		text:     textsource.New(cfg.Processing.MaxTextChars, textsource.WithLogger(logger.Named("textsource"))),
	}, nil
}
