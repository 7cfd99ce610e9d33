package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jafshop/medallion/pkg/pipeline"
	"github.com/jafshop/medallion/pkg/report"
)

// stagePipeline builds a pipeline for a single-stage command.
func stagePipeline(cmd *cobra.Command) (*pipeline.Pipeline, context.Context, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return p, cmd.Context(), nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run only the Bronze ingestion stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ctx, err := stagePipeline(cmd)
		if err != nil {
			return err
		}
		_, err = p.RunIngest(ctx)
		return err
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Run only the Silver transformation stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ctx, err := stagePipeline(cmd)
		if err != nil {
			return err
		}
		_, err = p.RunTransform(ctx)
		return err
	},
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Run only the Gold analytics stage",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ctx, err := stagePipeline(cmd)
		if err != nil {
			return err
		}
		_, err = p.RunAnalytics(ctx)
		return err
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a console summary of the Gold layer outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return report.NewPrinter(cfg.GoldFolder, os.Stdout).Print()
	},
}
