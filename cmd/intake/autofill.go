package main

import (
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/autofill"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/store"
)

var (
	autofillFormURL  string
	autofillKeepOpen bool
	autofillOut      string
)

var autofillCmd = &cobra.Command{
	Use:   "autofill <run-id>",
	Short: "Drive a resolved record into the destination form and verify every write",
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

		formURL := autofillFormURL
		if formURL == "" {
			formURL = cfg.Autofill.FormURL
		}
		if formURL == "" {
			return eris.New("no form URL (set --form-url or autofill.form_url)")
		}

		browser, err := autofill.Connect(ctx, autofill.BrowserConfig{
			DebuggerURL:       cfg.Autofill.DebuggerURL,
			Headless:          cfg.Autofill.Headless,
			NavigationTimeout: time.Duration(cfg.Autofill.NavTimeoutSecs) * time.Second,
			FieldTimeout:      time.Duration(cfg.Autofill.FieldTimeoutSecs) * time.Second,
		})
		if err != nil {
			return err
		}
		sessions := autofill.NewSessionManager(browser)
		keepOpen := autofillKeepOpen || cfg.Autofill.KeepSessionOpen
		if !keepOpen {
			defer func() { _ = sessions.Shutdown() }()
		}

		session, form, err := sessions.Open(ctx, formURL)
		if err != nil {
			// Navigation failure is the one fatal error: persist an empty
			// report so the run shows what happened, then stop.
			fatal := model.NewAutofillReport(formURL)
			fatal.Fatal = err.Error()
			if saveErr := env.Store.UpdateRunAutofill(ctx, run.ID, fatal); saveErr != nil {
				zap.L().Error("save fatal report", zap.Error(saveErr))
			}
			return err
		}

		exec := autofill.NewExecutor(form, env.Registry)
		report := exec.Run(run.Record)

		// Re-run the status engine so readback values and failures fold into
		// each field's status.
		summary := env.Resolver.Resolve(ctx, run.Record, report)

		summaryJSON, err := json.Marshal(summary)
		if err != nil {
			return eris.Wrap(err, "marshal summary")
		}
		if err := env.Store.UpdateRunSummary(ctx, run.ID, summaryJSON); err != nil {
			return err
		}
		if err := env.Store.UpdateRunAutofill(ctx, run.ID, report); err != nil {
			return err
		}
		if err := env.Store.UpdateRunRecord(ctx, run.ID, run.Record, store.RunStatusAutofilled); err != nil {
			return err
		}
		for _, resolved := range run.Record.Meta.Resolved {
			if err := env.Store.AppendFieldVersion(ctx, run.ID, resolved); err != nil {
				return err
			}
		}

		zap.L().Info("autofill complete",
			zap.String("run", run.ID),
			zap.String("session", session.ID),
			zap.Int("filled", len(report.Filled)),
			zap.Int("failed", len(report.Failures)),
			zap.Bool("kept_open", keepOpen),
		)

		return writeJSON(map[string]any{
			"run_id":  run.ID,
			"report":  report,
			"summary": summary,
		}, autofillOut)
	},
}

func init() {
	autofillCmd.Flags().StringVar(&autofillFormURL, "form-url", "", "destination form URL (default from config)")
	autofillCmd.Flags().BoolVar(&autofillKeepOpen, "keep-open", false, "leave the browser open for manual review")
	autofillCmd.Flags().StringVarP(&autofillOut, "out", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(autofillCmd)
}
