package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/mrz"
)

var (
	resolvePassportText string
	resolveOut          string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <record.json>",
	Short: "Reconcile an extracted record and report per-field status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := loadRecord(args[0])
		if err != nil {
			return err
		}

		if resolvePassportText != "" {
			text, err := os.ReadFile(resolvePassportText)
			if err != nil {
				return eris.Wrapf(err, "read passport text %s", resolvePassportText)
			}
			if parsed, ok := mrz.ParseText(string(text)); ok {
				if err := mrz.Apply(rec, parsed); err != nil {
					return err
				}
			} else {
				zap.L().Warn("no machine-readable zone found", zap.String("file", resolvePassportText))
			}
		}

		run, err := env.Store.CreateRun(ctx, rec)
		if err != nil {
			return err
		}

		summary := env.Resolver.Resolve(ctx, rec, nil)

		summaryJSON, err := json.Marshal(summary)
		if err != nil {
			return eris.Wrap(err, "marshal summary")
		}
		if err := env.Store.UpdateRunRecord(ctx, run.ID, rec, run.Status); err != nil {
			return err
		}
		if err := env.Store.UpdateRunSummary(ctx, run.ID, summaryJSON); err != nil {
			return err
		}
		for _, resolved := range rec.Meta.Resolved {
			if err := env.Store.AppendFieldVersion(ctx, run.ID, resolved); err != nil {
				return err
			}
		}

		zap.L().Info("record resolved",
			zap.String("run", run.ID),
			zap.Int("fields", len(summary.Fields)),
			zap.Bool("ready_for_autofill", summary.ReadyForAutofill),
		)

		return writeJSON(map[string]any{
			"run_id":  run.ID,
			"summary": summary,
		}, resolveOut)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePassportText, "passport-text", "", "OCR text file to mine for a passport machine-readable zone")
	resolveCmd.Flags().StringVarP(&resolveOut, "out", "o", "", "write the summary to a file instead of stdout")
	rootCmd.AddCommand(resolveCmd)
}
