package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 3180
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "worksite"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultIssuer     = "worksite-core"
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	maxRefreshTTL     = 30 * 24 * time.Hour
)

// EnvPrefix namespaces all environment overrides.
const EnvPrefix = "WORKSITE_"

// AppConfig holds runtime startup configuration loaded from YAML with
// environment overrides applied on top. Signing secrets are normally
// provided via environment only.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	Database       DatabaseConfig
	RedisURL       string
	AllowedOrigins []string
	Auth           AuthConfig
	Mail           MailConfig
}

// DatabaseConfig describes the MySQL connection.
type DatabaseConfig struct {
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// AuthConfig carries token issuance settings. AccessSecret and
// RefreshSecret must differ so that leaking one does not compromise
// the other.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// MailConfig holds SMTP settings for the registration welcome mail.
type MailConfig struct {
	Enable bool
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
}

func (c *AppConfig) IsDev() bool { return !strings.EqualFold(c.Env, "production") }

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	RedisURL       string            `yaml:"redis_url"`
	Database       rawDatabaseConfig `yaml:"database"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	Auth           rawAuthConfig     `yaml:"auth"`
	Mail           rawMailConfig     `yaml:"mail"`
}

type rawDatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type rawAuthConfig struct {
	AccessSecret  string `yaml:"access_secret"`
	RefreshSecret string `yaml:"refresh_secret"`
	Issuer        string `yaml:"issuer"`
	AccessTTL     string `yaml:"access_ttl"`
	RefreshTTL    string `yaml:"refresh_ttl"`
}

type rawMailConfig struct {
	Enable bool   `yaml:"enable"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Pass   string `yaml:"pass"`
	From   string `yaml:"from"`
}

// Load reads the YAML config file, applies defaults and environment
// overrides, and validates the result. A missing file is tolerated
// (env-only deployments); a missing signing secret is not.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		var raw rawAppConfig
		if derr := decoder.Decode(&raw); derr != nil && !errors.Is(derr, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, derr)
		}
		if aerr := applyRaw(&cfg, raw); aerr != nil {
			return nil, fmt.Errorf("config file %q: %w", path, aerr)
		}
	case os.IsNotExist(err):
		// env-only configuration
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces startup invariants. Absence of a signing secret is a
// fatal configuration error: the service must not accept traffic without one.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Auth.AccessSecret == "" {
		return errors.New("auth.access_secret is required (" + EnvPrefix + "ACCESS_TOKEN_SECRET)")
	}
	if c.Auth.RefreshSecret == "" {
		return errors.New("auth.refresh_secret is required (" + EnvPrefix + "REFRESH_TOKEN_SECRET)")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("auth access and refresh secrets must differ")
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= c.Auth.AccessTTL {
		return fmt.Errorf("invalid token lifetimes: access %s, refresh %s", c.Auth.AccessTTL, c.Auth.RefreshTTL)
	}
	return nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host: defaultDBHost,
			Port: defaultDBPort,
			User: defaultDBUser,
			Name: defaultDBName,
		},
		RedisURL: defaultRedisURL,
		Auth: AuthConfig{
			Issuer:     defaultIssuer,
			AccessTTL:  defaultAccessTTL,
			RefreshTTL: defaultRefreshTTL,
		},
	}
}

func applyRaw(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if raw.Env != "" {
		cfg.Env = raw.Env
	}
	if raw.RedisURL != "" {
		cfg.RedisURL = raw.RedisURL
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	}

	d := raw.Database
	if d.DSN != "" {
		cfg.Database.DSN = d.DSN
	}
	if d.Host != "" {
		cfg.Database.Host = d.Host
	}
	if d.Port != 0 {
		cfg.Database.Port = d.Port
	}
	if d.User != "" {
		cfg.Database.User = d.User
	}
	if d.Password != "" {
		cfg.Database.Password = d.Password
	}
	if d.Name != "" {
		cfg.Database.Name = d.Name
	}

	a := raw.Auth
	if a.AccessSecret != "" {
		cfg.Auth.AccessSecret = a.AccessSecret
	}
	if a.RefreshSecret != "" {
		cfg.Auth.RefreshSecret = a.RefreshSecret
	}
	if a.Issuer != "" {
		cfg.Auth.Issuer = a.Issuer
	}
	if a.AccessTTL != "" {
		ttl, err := time.ParseDuration(a.AccessTTL)
		if err != nil {
			return fmt.Errorf("auth.access_ttl: %w", err)
		}
		cfg.Auth.AccessTTL = ttl
	}
	if a.RefreshTTL != "" {
		ttl, err := time.ParseDuration(a.RefreshTTL)
		if err != nil {
			return fmt.Errorf("auth.refresh_ttl: %w", err)
		}
		cfg.Auth.RefreshTTL = ttl
	}

	m := raw.Mail
	cfg.Mail = MailConfig{
		Enable: m.Enable,
		Host:   m.Host,
		Port:   m.Port,
		User:   m.User,
		Pass:   m.Pass,
		From:   m.From,
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if v := envValue("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: %w", EnvPrefix, err)
		}
		cfg.Port = port
	}
	if v := envValue("ENV"); v != "" {
		cfg.Env = v
	}
	if v := envValue("DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := envValue("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := envValue("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := envValue("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := envValue("ACCESS_TOKEN_SECRET"); v != "" {
		cfg.Auth.AccessSecret = v
	}
	if v := envValue("REFRESH_TOKEN_SECRET"); v != "" {
		cfg.Auth.RefreshSecret = v
	}
	if v := envValue("TOKEN_ISSUER"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := envValue("ACCESS_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sACCESS_TOKEN_TTL: %w", EnvPrefix, err)
		}
		cfg.Auth.AccessTTL = ttl
	}
	if v := envValue("REFRESH_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sREFRESH_TOKEN_TTL: %w", EnvPrefix, err)
		}
		cfg.Auth.RefreshTTL = ttl
	}
	return nil
}

func normalize(cfg *AppConfig) {
	// Refresh lifetime is capped at 30 days.
	if cfg.Auth.RefreshTTL > maxRefreshTTL {
		cfg.Auth.RefreshTTL = maxRefreshTTL
	}
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}
