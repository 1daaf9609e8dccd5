package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/godilite/camps-trends/internal/app"
	"github.com/godilite/camps-trends/internal/config"
	"github.com/godilite/camps-trends/internal/service"
)

// resultView is the YAML shape printed after a recalculation.
type resultView struct {
	JobID             string   `yaml:"job_id"`
	Status            string   `yaml:"status"`
	Message           string   `yaml:"message"`
	CalculatedRecords int      `yaml:"calculated_records"`
	Errors            []string `yaml:"errors,omitempty"`
}

func viewOf(r service.CalculationResult) resultView {
	view := resultView{
		JobID:             r.JobID,
		Status:            string(r.Status),
		Message:           r.Message,
		CalculatedRecords: r.CalculatedRecords,
	}
	for _, e := range r.Errors {
		view.Errors = append(view.Errors, e.String())
	}
	return view
}

func newRecalculateCmd(v *viper.Viper) *cobra.Command {
	var teamID string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild trend records synchronously",
		Long: `Rebuild materialized trend records from the rating store.

Without --team every team is recalculated. The command exits non-zero when
any unit failed; the printed result lists the failed units.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			core, err := app.NewCore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := core.Close(); err != nil {
					logger.Warn("close resources", zap.Error(err))
				}
			}()

			result := core.Trends.Recalculate(ctx, teamID)
			if err := writeYAML(cmd.OutOrStdout(), viewOf(result)); err != nil {
				return err
			}
			return result.Err()
		},
	}
	cmd.Flags().StringVar(&teamID, "team", "", "recalculate only this team")
	return cmd
}
