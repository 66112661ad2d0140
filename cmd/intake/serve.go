package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/coverage"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/resolver"
	"github.com/sells-group/intake-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/registry", func(w http.ResponseWriter, req *http.Request) {
			respondJSON(w, http.StatusOK, env.Registry.Fields())
		})

		r.Post("/runs", func(w http.ResponseWriter, req *http.Request) {
			rec := model.NewRecord()
			if err := json.NewDecoder(req.Body).Decode(rec); err != nil {
				respondError(w, http.StatusBadRequest, "invalid record body")
				return
			}
			run, err := env.Store.CreateRun(req.Context(), rec)
			if err != nil {
				zap.L().Error("create run", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "create run failed")
				return
			}
			respondJSON(w, http.StatusCreated, run)
		})

		r.Post("/runs/{id}/resolve", func(w http.ResponseWriter, req *http.Request) {
			runID := chi.URLParam(req, "id")
			run, err := env.Store.GetRun(req.Context(), runID)
			if err != nil {
				respondError(w, http.StatusNotFound, "run not found")
				return
			}

			summary := env.Resolver.Resolve(req.Context(), run.Record, run.Autofill)

			summaryJSON, err := json.Marshal(summary)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "encode summary failed")
				return
			}
			if err := env.Store.UpdateRunRecord(req.Context(), runID, run.Record, run.Status); err != nil {
				zap.L().Error("save record", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "save failed")
				return
			}
			if err := env.Store.UpdateRunSummary(req.Context(), runID, summaryJSON); err != nil {
				zap.L().Error("save summary", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "save failed")
				return
			}
			respondJSON(w, http.StatusOK, summary)
		})

		r.Post("/runs/{id}/edit", func(w http.ResponseWriter, req *http.Request) {
			runID := chi.URLParam(req, "id")
			var edit struct {
				Field string `json:"field"`
				Value string `json:"value"`
			}
			if err := json.NewDecoder(req.Body).Decode(&edit); err != nil || edit.Field == "" {
				respondError(w, http.StatusBadRequest, "field and value are required")
				return
			}
			run, err := env.Store.GetRun(req.Context(), runID)
			if err != nil {
				respondError(w, http.StatusNotFound, "run not found")
				return
			}
			if err := env.Resolver.ApplyUserEdit(run.Record, edit.Field, edit.Value); err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := env.Store.UpdateRunRecord(req.Context(), runID, run.Record, store.RunStatusReviewed); err != nil {
				zap.L().Error("save record", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "save failed")
				return
			}
			if resolved := run.Record.Meta.Resolved[edit.Field]; resolved != nil {
				if err := env.Store.AppendFieldVersion(req.Context(), runID, resolved); err != nil {
					zap.L().Warn("append field version", zap.Error(err))
				}
			}
			respondJSON(w, http.StatusOK, map[string]string{"status": "applied", "field": edit.Field})
		})

		r.Get("/runs/{id}/coverage", func(w http.ResponseWriter, req *http.Request) {
			runID := chi.URLParam(req, "id")
			run, err := env.Store.GetRun(req.Context(), runID)
			if err != nil {
				respondError(w, http.StatusNotFound, "run not found")
				return
			}
			var summary *resolver.Summary
			if len(run.Summary) > 0 {
				summary = &resolver.Summary{}
				if err := json.Unmarshal(run.Summary, summary); err != nil {
					respondError(w, http.StatusInternalServerError, "decode summary failed")
					return
				}
			}
			respondJSON(w, http.StatusOK, coverage.Build(env.Registry, run.Record, summary, run.Autofill))
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
