package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Source kinds understood by the source package.
const (
	SourceKindStatic = "static"
	SourceKindFile   = "file"
	SourceKindHTTP   = "http"
)

// Config holds the full application configuration.
type Config struct {
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Sources    []SourceConfig   `yaml:"sources" mapstructure:"sources"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DiscoveryConfig configures the discovery pipeline.
type DiscoveryConfig struct {
	Limit              int           `yaml:"limit" mapstructure:"limit"`
	SourceTimeoutSecs  int           `yaml:"source_timeout_secs" mapstructure:"source_timeout_secs"`
	MinScore           float64       `yaml:"min_score" mapstructure:"min_score"`
	Weights            WeightsConfig `yaml:"weights" mapstructure:"weights"`
	DirectoryBlocklist []string      `yaml:"directory_blocklist" mapstructure:"directory_blocklist"`
}

// WeightsConfig holds the scoring weight vector.
type WeightsConfig struct {
	Keyword       float64 `yaml:"keyword" mapstructure:"keyword"`
	Industry      float64 `yaml:"industry" mapstructure:"industry"`
	Corroboration float64 `yaml:"corroboration" mapstructure:"corroboration"`
	Presence      float64 `yaml:"presence" mapstructure:"presence"`
}

// SourceConfig describes one source connector. Which fields apply depends on Kind.
type SourceConfig struct {
	ID        string         `yaml:"id" mapstructure:"id"`
	Kind      string         `yaml:"kind" mapstructure:"kind"`
	Path      string         `yaml:"path" mapstructure:"path"`
	URL       string         `yaml:"url" mapstructure:"url"`
	TokenEnv  string         `yaml:"token_env" mapstructure:"token_env"`
	RateLimit float64        `yaml:"rate_limit" mapstructure:"rate_limit"`
	Records   []RecordConfig `yaml:"records" mapstructure:"records"`
}

// RecordConfig is an inline candidate for a static source.
type RecordConfig struct {
	CompanyName string `yaml:"company_name" mapstructure:"company_name"`
	Website     string `yaml:"website" mapstructure:"website"`
	Industry    string `yaml:"industry" mapstructure:"industry"`
	Description string `yaml:"description" mapstructure:"description"`
}

// Target returns a short description of where the source reads from.
func (s SourceConfig) Target() string {
	switch s.Kind {
	case SourceKindFile:
		return s.Path
	case SourceKindHTTP:
		return s.URL
	case SourceKindStatic:
		return fmt.Sprintf("%d inline records", len(s.Records))
	default:
		return ""
	}
}

// ResilienceConfig configures retries and circuit breaking for remote sources.
type ResilienceConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("LEADFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("discovery.limit", 25)
	v.SetDefault("discovery.source_timeout_secs", 10)
	v.SetDefault("discovery.min_score", 0.0)
	v.SetDefault("discovery.weights.keyword", 0.50)
	v.SetDefault("discovery.weights.industry", 0.30)
	v.SetDefault("discovery.weights.corroboration", 0.10)
	v.SetDefault("discovery.weights.presence", 0.10)
	v.SetDefault("discovery.directory_blocklist", []string{
		"yelp.com", "facebook.com", "linkedin.com", "yellowpages.com", "bbb.org",
		"mapquest.com", "instagram.com", "twitter.com", "x.com", "google.com",
	})
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_ms", 500)
	v.SetDefault("resilience.max_backoff_ms", 5000)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)

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

// Validate checks the configuration needed to run discovery.
func (c *Config) Validate() error {
	var errs []string

	d := c.Discovery
	if d.Limit <= 0 {
		errs = append(errs, "discovery.limit must be > 0")
	}
	if d.SourceTimeoutSecs <= 0 {
		errs = append(errs, "discovery.source_timeout_secs must be > 0")
	}
	if d.MinScore < 0 || d.MinScore > 1 {
		errs = append(errs, "discovery.min_score must be between 0 and 1")
	}
	w := d.Weights
	if w.Keyword < 0 || w.Industry < 0 || w.Corroboration < 0 || w.Presence < 0 {
		errs = append(errs, "discovery.weights must be >= 0")
	}
	if w.Keyword+w.Industry+w.Corroboration+w.Presence <= 0 {
		errs = append(errs, "discovery.weights must sum to > 0")
	}

	if len(c.Sources) == 0 {
		errs = append(errs, "at least one source is required")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			errs = append(errs, fmt.Sprintf("sources[%d].id is required", i))
		} else if seen[s.ID] {
			errs = append(errs, fmt.Sprintf("sources[%d].id %q is duplicated", i, s.ID))
		}
		seen[s.ID] = true

		switch s.Kind {
		case SourceKindStatic:
		case SourceKindFile:
			if s.Path == "" {
				errs = append(errs, fmt.Sprintf("sources[%d].path is required for file sources", i))
			}
		case SourceKindHTTP:
			if s.URL == "" {
				errs = append(errs, fmt.Sprintf("sources[%d].url is required for http sources", i))
			}
			if s.RateLimit < 0 {
				errs = append(errs, fmt.Sprintf("sources[%d].rate_limit must be >= 0", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("sources[%d].kind %q is not one of static, file, http", i, s.Kind))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
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
