// Package config loads application configuration from file and
// environment and wires the global logger.
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
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the reference tables. Each entry may be a local
// path or an http(s) URL.
type DataConfig struct {
	LookupTable    string `yaml:"lookup_table" mapstructure:"lookup_table"`
	RephraseTable  string `yaml:"rephrase_table" mapstructure:"rephrase_table"`
	StructureTable string `yaml:"structure_table" mapstructure:"structure_table"`
	ActivityTable  string `yaml:"activity_table" mapstructure:"activity_table"`
	MetaFile       string `yaml:"meta_file" mapstructure:"meta_file"`
	TempDir        string `yaml:"temp_dir" mapstructure:"temp_dir"`
	RephraseKeep   string `yaml:"rephrase_keep" mapstructure:"rephrase_keep"`
}

// SourceConfig configures remote table downloads.
type SourceConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the resolution-run store.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// BatchConfig configures batch enrichment.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
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
	v.SetEnvPrefix("SIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.lookup_table", "data/sic_lookup.csv")
	v.SetDefault("data.rephrase_table", "data/sic_rephrased.csv")
	v.SetDefault("data.temp_dir", "/tmp/sic-cli")
	v.SetDefault("data.rephrase_keep", "last")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.rate_per_sec", 5)
	v.SetDefault("source.user_agent", "sic-cli/1.0")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "sic-cli.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
