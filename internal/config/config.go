package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Mail    MailConfig    `yaml:"mail" mapstructure:"mail"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and tunes the submission store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	SubmitRatePerMinute int      `yaml:"submit_rate_per_minute" mapstructure:"submit_rate_per_minute"`
	SubmitBurst         int      `yaml:"submit_burst" mapstructure:"submit_burst"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// ShutdownTimeout returns the graceful shutdown window.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}

// ScoringConfig picks the rule set used to classify submissions. A
// non-empty RuleSetFile wins over RuleSet.
type ScoringConfig struct {
	RuleSet     string `yaml:"rule_set" mapstructure:"rule_set"`
	RuleSetFile string `yaml:"rule_set_file" mapstructure:"rule_set_file"`
}

// AuthConfig configures admin tokens and the seeded admin account.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
	Issuer        string `yaml:"issuer" mapstructure:"issuer"`
	SeedUsername  string `yaml:"seed_username" mapstructure:"seed_username"`
	SeedEmail     string `yaml:"seed_email" mapstructure:"seed_email"`
	SeedPassword  string `yaml:"seed_password" mapstructure:"seed_password"`
}

// TokenTTL returns the admin token lifetime.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// MailConfig configures blueprint delivery.
type MailConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	From          string `yaml:"from" mapstructure:"from"`
	FromName      string `yaml:"from_name" mapstructure:"from_name"`
	SMTPHost      string `yaml:"smtp_host" mapstructure:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port" mapstructure:"smtp_port"`
	SMTPUsername  string `yaml:"smtp_username" mapstructure:"smtp_username"`
	SMTPPassword  string `yaml:"smtp_password" mapstructure:"smtp_password"`
	PlunkKey      string `yaml:"plunk_key" mapstructure:"plunk_key"`
	PlunkURL      string `yaml:"plunk_url" mapstructure:"plunk_url"`
	AttachPDF     bool   `yaml:"attach_pdf" mapstructure:"attach_pdf"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RetryAttempts int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// Timeout returns the per-send timeout.
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
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
	v.SetEnvPrefix("BLUEPRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a useful default are still registered so that
	// AutomaticEnv picks them up during Unmarshal.
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "blueprint.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.submit_rate_per_minute", 30)
	v.SetDefault("server.submit_burst", 10)
	v.SetDefault("server.shutdown_timeout_secs", 15)
	v.SetDefault("scoring.rule_set", "standard")
	v.SetDefault("scoring.rule_set_file", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.issuer", "blueprint")
	v.SetDefault("auth.seed_username", "admin")
	v.SetDefault("auth.seed_email", "admin@myrtlewealth.com")
	v.SetDefault("auth.seed_password", "")
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from", "noreply@myrtlewealth.com")
	v.SetDefault("mail.from_name", "Myrtle Wealth")
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.smtp_username", "")
	v.SetDefault("mail.smtp_password", "")
	v.SetDefault("mail.plunk_key", "")
	v.SetDefault("mail.plunk_url", "https://api.useplunk.com/v1/send")
	v.SetDefault("mail.attach_pdf", true)
	v.SetDefault("mail.timeout_secs", 30)
	v.SetDefault("mail.retry_attempts", 3)
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

// Validation modes select which sections must be complete.
const (
	ModeServe = "serve"
	ModeCLI   = "cli"
)

// Validate checks the sections mode depends on and reports every problem
// at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.MinConns > c.Store.MaxConns && c.Store.MaxConns > 0 {
		errs = append(errs, "store.min_conns must not exceed store.max_conns")
	}
	if c.Scoring.RuleSet == "" && c.Scoring.RuleSetFile == "" {
		errs = append(errs, "scoring.rule_set or scoring.rule_set_file is required")
	}

	switch mode {
	case ModeServe:
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
		}
		if c.Server.SubmitRatePerMinute < 0 || c.Server.SubmitBurst < 0 {
			errs = append(errs, "server submit rate limits must not be negative")
		}
		if c.Auth.JWTSecret == "" {
			errs = append(errs, "auth.jwt_secret is required")
		}
		if c.Auth.TokenTTLHours <= 0 {
			errs = append(errs, "auth.token_ttl_hours must be positive")
		}
		errs = append(errs, c.Mail.problems()...)
	case ModeCLI:
	default:
		errs = append(errs, fmt.Sprintf("unknown validation mode %q", mode))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

var mailProviders = []string{"log", "smtp", "plunk"}

func (c MailConfig) problems() []string {
	var errs []string
	if !slices.Contains(mailProviders, c.Provider) {
		return []string{fmt.Sprintf("mail.provider %q must be one of %s", c.Provider, strings.Join(mailProviders, ", "))}
	}
	switch c.Provider {
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, "mail.smtp_host is required for smtp")
		}
		if c.From == "" {
			errs = append(errs, "mail.from is required for smtp")
		}
	case "plunk":
		if c.PlunkKey == "" {
			errs = append(errs, "mail.plunk_key is required for plunk")
		}
	}
	return errs
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
