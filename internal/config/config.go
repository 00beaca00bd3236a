package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/claims-cli/internal/blob"
	"github.com/sells-group/claims-cli/internal/docai"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Blob      blob.Config     `yaml:"blob" mapstructure:"blob"`
	Docai     docai.Config    `yaml:"docai" mapstructure:"docai"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the license-record table backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds vision-language model settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the claim-submission HTTP server.
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
	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("blob.bucket", "claim-documents")
	v.SetDefault("blob.local_dir", "/tmp/claims")
	v.SetDefault("blob.presign_expiry_mins", 15)
	v.SetDefault("docai.license_model", "license-data-v1")
	v.SetDefault("docai.claim_model", "claims-data-v1")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")

	// Keys with no sensible default still need registering so the env
	// overrides reach Unmarshal.
	v.SetDefault("blob.use_ssl", false)
	for _, key := range []string{
		"store.database_url",
		"blob.endpoint", "blob.access_key", "blob.secret_key",
		"docai.base_url", "docai.key",
		"anthropic.key",
	} {
		v.SetDefault(key, "")
	}

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

// Validate checks settings that are required before a pipeline run.
func (c *Config) Validate() error {
	switch {
	case c.Blob.Endpoint == "":
		return eris.New("config: blob.endpoint is required")
	case c.Blob.LocalDir == "":
		return eris.New("config: blob.local_dir is required")
	case c.Docai.BaseURL == "":
		return eris.New("config: docai.base_url is required")
	case c.Anthropic.Key == "":
		return eris.New("config: anthropic.key is required")
	}
	return nil
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
