package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafshop/medallion/pkg/config"
)

var (
	flagCSVFolder    string
	flagBronzeFolder string
	flagSilverFolder string
	flagGoldFolder   string
	flagSynthetic    bool
)

var rootCmd = &cobra.Command{
	Use:   "medallion",
	Short: "Batch medallion pipeline: ingest, clean and aggregate tabular data",
	Long: `medallion runs a three-stage batch data pipeline.

  Bronze  raw ingestion from local CSV files and remote JSONL objects
  Silver  column normalization, type coercion, deduplication, imputation
  Gold    per-customer and per-category business metrics

Examples:

  medallion run
  medallion ingest
  medallion report
`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCSVFolder, "csv-folder", "", "source CSV folder (overrides CSV_FOLDER)")
	rootCmd.PersistentFlags().StringVar(&flagBronzeFolder, "bronze-folder", "", "bronze layer folder (overrides BRONZE_FOLDER)")
	rootCmd.PersistentFlags().StringVar(&flagSilverFolder, "silver-folder", "", "silver layer folder (overrides SILVER_FOLDER)")
	rootCmd.PersistentFlags().StringVar(&flagGoldFolder, "gold-folder", "", "gold layer folder (overrides GOLD_FOLDER)")
	rootCmd.PersistentFlags().BoolVar(&flagSynthetic, "allow-synthetic-fallback", false, "fall back to synthetic demo data when sources are unavailable")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(reportCmd)
}

// loadConfig builds the configuration from environment variables with
// flag overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagCSVFolder != "" {
		cfg.CSVFolder = flagCSVFolder
	}
	if flagBronzeFolder != "" {
		cfg.BronzeFolder = flagBronzeFolder
	}
	if flagSilverFolder != "" {
		cfg.SilverFolder = flagSilverFolder
	}
	if flagGoldFolder != "" {
		cfg.GoldFolder = flagGoldFolder
	}
	if flagSynthetic {
		cfg.AllowSyntheticFallback = true
	}
	return cfg, nil
}

// newLogger constructs the zap logger from config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
