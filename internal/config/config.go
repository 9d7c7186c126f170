// Package config loads gymdesk settings from .env, an optional config.yaml and GYM_* environment variables.
//
// Precedence, highest first: environment, config.yaml, defaults. A .env file only
// seeds the environment; variables already set win.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. GYM_STORAGE_BACKEND.
const EnvPrefix = "GYM"

// Storage backends.
const (
	BackendAuto   = "auto"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// minJWTSecret is the shortest signing key accepted in production.
const minJWTSecret = 32

// devJWTSecret signs tokens when no secret is configured outside production.
const devJWTSecret = "gymdesk-development-secret-do-not-deploy"

// Config is the resolved runtime configuration.
type Config struct {
	Env      string
	Addr     string
	LogLevel string
	GymName  string

	Storage StorageConfig
	JWT     JWTConfig
	Admin   AdminConfig
	OTP     OTPConfig
	Email   EmailConfig

	CSRFKey            []byte
	TrustedOrigins     []string
	CORSOrigins        []string
	RateLimitPerSecond int
	ReminderDays       int
	SlowRequestMs      int
}

// StorageConfig selects and locates the backend.
type StorageConfig struct {
	Backend    string
	SQLitePath string
	FilePath   string
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// AdminConfig seeds the first admin account on an empty store.
type AdminConfig struct {
	Email    string
	Password string
}

// OTPConfig configures the SMS gateway.
type OTPConfig struct {
	ProviderURL string
	APIKey      string
	Template    string
	DryRun      bool
	Timeout     time.Duration
}

// EmailConfig configures Resend delivery.
type EmailConfig struct {
	ResendKey string
	From      string
	ReplyTo   string
}

// IsProduction reports whether Env is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("gym_name", "Gym")
	v.SetDefault("storage.backend", BackendAuto)
	v.SetDefault("storage.sqlite_path", "data/gymdesk.db")
	v.SetDefault("storage.file_path", "data/gymdesk.json")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("csrf.key", "")
	v.SetDefault("csrf.trusted_origins", "")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("otp.provider_url", "")
	v.SetDefault("otp.api_key", "")
	v.SetDefault("otp.template", "")
	v.SetDefault("otp.dry_run", false)
	v.SetDefault("otp.timeout", "10s")
	v.SetDefault("email.resend_key", "")
	v.SetDefault("email.from", "Gym <noreply@example.com>")
	v.SetDefault("email.reply_to", "")
	v.SetDefault("cors.origins", "")
	v.SetDefault("ratelimit.per_second", 10)
	v.SetDefault("reminders.days", 7)
	v.SetDefault("slow_request_ms", 200)
}

// Load resolves configuration, reading dir/.env and dir/config.yaml when present.
// PRE: dir is readable or "" for the working directory
// POST: Returned Config passed Validate
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = "."
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config.yaml: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Env:      strings.ToLower(strings.TrimSpace(v.GetString("env"))),
		Addr:     v.GetString("addr"),
		LogLevel: v.GetString("log_level"),
		GymName:  v.GetString("gym_name"),
		Storage: StorageConfig{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			SQLitePath: v.GetString("storage.sqlite_path"),
			FilePath:   v.GetString("storage.file_path"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    v.GetDuration("jwt.ttl"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
		OTP: OTPConfig{
			ProviderURL: v.GetString("otp.provider_url"),
			APIKey:      v.GetString("otp.api_key"),
			Template:    v.GetString("otp.template"),
			DryRun:      v.GetBool("otp.dry_run"),
			Timeout:     v.GetDuration("otp.timeout"),
		},
		Email: EmailConfig{
			ResendKey: v.GetString("email.resend_key"),
			From:      v.GetString("email.from"),
			ReplyTo:   v.GetString("email.reply_to"),
		},
		TrustedOrigins:     splitList(v.GetString("csrf.trusted_origins")),
		CORSOrigins:        splitList(v.GetString("cors.origins")),
		RateLimitPerSecond: v.GetInt("ratelimit.per_second"),
		ReminderDays:       v.GetInt("reminders.days"),
		SlowRequestMs:      v.GetInt("slow_request_ms"),
	}

	if raw := strings.TrimSpace(v.GetString("csrf.key")); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil || len(key) != 32 {
			return Config{}, errors.New("csrf.key must be 64 hex characters")
		}
		cfg.CSRFKey = key
	}

	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		slog.Warn("config_event", "event", "dev_jwt_secret", "hint", "set GYM_JWT_SECRET")
		cfg.JWT.Secret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendAuto, BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("storage.backend must be one of auto, sqlite, file (got %q)", c.Storage.Backend)
	}
	if c.IsProduction() && len(c.JWT.Secret) < minJWTSecret {
		return fmt.Errorf("jwt.secret must be at least %d characters in production", minJWTSecret)
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	if c.RateLimitPerSecond < 0 {
		return errors.New("ratelimit.per_second must not be negative")
	}
	if c.ReminderDays < 0 {
		return errors.New("reminders.days must not be negative")
	}
	return nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
