package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jafshop/medallion/pkg/pipeline"
	"github.com/jafshop/medallion/pkg/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full Bronze → Silver → Gold pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		p, err := pipeline.New(cfg, logger)
		if err != nil {
			return err
		}

		summary, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		logger.Info("Run finished",
			zap.String("runID", summary.RunID),
			zap.Duration("duration", summary.Duration))

		return report.NewPrinter(cfg.GoldFolder, os.Stdout).Print()
	},
}
