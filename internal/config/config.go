package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBDriver       string        `yaml:"db_driver"` // sqlite | pgx
	DBDSN          string        `yaml:"db_dsn"`
	AnonKey        string        `yaml:"anon_key"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	Env            string        `yaml:"env"`
	LogFile        string        `yaml:"log_file"`
	WebhookURL     string        `yaml:"log_webhook_url"`
	SentryDSN      string        `yaml:"sentry_dsn"`
	Version        string        `yaml:"version"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func Defaults() Config {
	return Config{
		Port:           "8080",
		DBDriver:       "sqlite",
		DBDSN:          "voltcart.db", // sqlite file in project root
		TokenTTL:       time.Hour,
		Env:            EnvProduction,
		Version:        "dev",
		RequestTimeout: 10 * time.Second,
	}
}

// Load resolves configuration from defaults, then the optional YAML file named
// by VOLTCART_CONFIG, then environment variables.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("VOLTCART_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &c.Port)
	str("DB_DRIVER", &c.DBDriver)
	str("DB_DSN", &c.DBDSN)
	str("STORE_ANON_KEY", &c.AnonKey)
	str("AUTH_JWT_SECRET", &c.JWTSecret)
	str("APP_ENV", &c.Env)
	str("NODE_ENV", &c.Env)
	str("LOG_FILE", &c.LogFile)
	str("LOG_WEBHOOK_URL", &c.WebhookURL)
	str("SENTRY_DSN", &c.SentryDSN)
	str("APP_VERSION", &c.Version)
	if err := dur("AUTH_TOKEN_TTL", &c.TokenTTL); err != nil {
		return err
	}
	return dur("REQUEST_TIMEOUT", &c.RequestTimeout)
}

func (c *Config) Validate() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("unknown environment %q", c.Env)
	}
	if c.DBDriver != "sqlite" && c.DBDriver != "pgx" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SigningSecret() == "" {
		return errors.New("AUTH_JWT_SECRET or STORE_ANON_KEY must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("AUTH_TOKEN_TTL must be positive")
	}
	return nil
}

// SigningSecret is the key used to sign session tokens. Development falls back
// to a fixed key so a fresh checkout runs without setup.
func (c Config) SigningSecret() string {
	switch {
	case c.JWTSecret != "":
		return c.JWTSecret
	case c.AnonKey != "":
		return c.AnonKey
	case c.IsDevelopment():
		return "voltcart-dev-secret"
	}
	return ""
}

func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c Config) IsProduction() bool  { return c.Env == EnvProduction }

// Summary lists the resolved values with secrets elided, for the startup log.
func (c Config) Summary() map[string]any {
	return map[string]any{
		"port":            c.Port,
		"db_driver":       c.DBDriver,
		"db_dsn":          redact(c.DBDSN),
		"env":             c.Env,
		"version":         c.Version,
		"log_file":        c.LogFile,
		"webhook":         c.WebhookURL != "",
		"sentry":          c.SentryDSN != "",
		"token_ttl":       c.TokenTTL.String(),
		"request_timeout": c.RequestTimeout.String(),
	}
}

func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
