package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/coverage"
	"github.com/sells-group/intake-cli/internal/resolver"
)

var (
	coverageJSONOut string
	coverageXLSXOut string
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <run-id>",
	Short: "Export a per-field coverage report for a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		var summary *resolver.Summary
		if len(run.Summary) > 0 {
			summary = &resolver.Summary{}
			if err := json.Unmarshal(run.Summary, summary); err != nil {
				return eris.Wrap(err, "decode stored summary")
			}
		}

		report := coverage.Build(env.Registry, run.Record, summary, run.Autofill)

		reportJSON, err := json.Marshal(report)
		if err != nil {
			return eris.Wrap(err, "marshal coverage")
		}
		if err := env.Store.UpdateRunCoverage(ctx, run.ID, reportJSON); err != nil {
			return err
		}

		if coverageXLSXOut != "" {
			if err := coverage.WriteXLSX(report, coverageXLSXOut); err != nil {
				return err
			}
			zap.L().Info("workbook written", zap.String("path", coverageXLSXOut))
		}

		return writeJSON(report, coverageJSONOut)
	},
}

func init() {
	coverageCmd.Flags().StringVarP(&coverageJSONOut, "out", "o", "", "write the JSON report to a file instead of stdout")
	coverageCmd.Flags().StringVar(&coverageXLSXOut, "xlsx", "", "also export an xlsx workbook to this path")
	rootCmd.AddCommand(coverageCmd)
}
