package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/resolver"
	"github.com/sells-group/intake-cli/internal/rules"
	"github.com/sells-group/intake-cli/internal/store"
	"github.com/sells-group/intake-cli/pkg/verifier"
)

// env bundles the wired subsystems a command needs.
type env struct {
	Store    store.Store
	Registry *model.Registry
	Resolver *resolver.Resolver
}

func initEnv(ctx context.Context) (*env, error) {
	registry, err := initRegistry()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	opts := []resolver.Option{
		resolver.WithTokenTarget(cfg.Resolver.TargetTokens),
	}
	if cfg.Anthropic.Key != "" {
		client := verifier.New(
			verifier.NewClient(cfg.Anthropic.Key),
			verifier.WithModel(cfg.Anthropic.Model),
			verifier.WithMaxTokens(cfg.Anthropic.MaxTokens),
		)
		opts = append(opts,
			resolver.WithLLM(client, resolver.ParseScope(cfg.Resolver.LLMScope)),
			resolver.WithRateLimit(cfg.Resolver.LLMRatePerSec, 1),
		)
	} else {
		zap.L().Warn("no anthropic key configured, running deterministic-only")
	}

	return &env{
		Store:    st,
		Registry: registry,
		Resolver: resolver.New(registry, rules.New(), opts...),
	}, nil
}

func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initRegistry() (*model.Registry, error) {
	if cfg.Registry.Path != "" {
		return model.LoadRegistry(cfg.Registry.Path)
	}
	return model.DefaultRegistry(), nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// loadRecord reads an extracted record from a JSON file.
func loadRecord(path string) (*model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read record %s", path)
	}
	rec := model.NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, eris.Wrapf(err, "decode record %s", path)
	}
	return rec, nil
}

// writeJSON writes v to path, or stdout when path is "-" or empty.
func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return eris.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
