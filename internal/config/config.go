package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Autofill  AutofillConfig  `yaml:"autofill" mapstructure:"autofill"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// RegistryConfig points at an external field registry override.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ResolverConfig tunes the reconciliation pass.
type ResolverConfig struct {
	LLMScope       string  `yaml:"llm_scope" mapstructure:"llm_scope"`
	LLMConcurrency int     `yaml:"llm_concurrency" mapstructure:"llm_concurrency"`
	LLMRatePerSec  float64 `yaml:"llm_rate_per_sec" mapstructure:"llm_rate_per_sec"`
	TargetTokens   int     `yaml:"target_tokens" mapstructure:"target_tokens"`
}

// AutofillConfig configures browser automation.
type AutofillConfig struct {
	FormURL          string `yaml:"form_url" mapstructure:"form_url"`
	DebuggerURL      string `yaml:"debugger_url" mapstructure:"debugger_url"`
	Headless         bool   `yaml:"headless" mapstructure:"headless"`
	NavTimeoutSecs   int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	FieldTimeoutSecs int    `yaml:"field_timeout_secs" mapstructure:"field_timeout_secs"`
	KeepSessionOpen  bool   `yaml:"keep_session_open" mapstructure:"keep_session_open"`
}

// ServerConfig configures the review API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "intake.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	// An empty default keeps the key visible to AutomaticEnv so
	// INTAKE_ANTHROPIC_KEY binds without a config file.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("resolver.llm_scope", "smart")
	v.SetDefault("resolver.llm_concurrency", 4)
	v.SetDefault("resolver.llm_rate_per_sec", 2)
	v.SetDefault("resolver.target_tokens", 3500)
	v.SetDefault("registry.path", "")
	v.SetDefault("autofill.form_url", "")
	v.SetDefault("autofill.debugger_url", "")
	v.SetDefault("autofill.headless", true)
	v.SetDefault("autofill.nav_timeout_secs", 30)
	v.SetDefault("autofill.field_timeout_secs", 5)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
