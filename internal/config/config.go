// Package config provides centralized configuration management using Viper.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by the backend key.
const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// Config holds all configuration values for the TechFest service.
type Config struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Env     string `mapstructure:"env" yaml:"env"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
	Backend string `mapstructure:"backend" yaml:"backend"`

	FirebaseCredentialsFile string `mapstructure:"firebase_credentials_file" yaml:"firebase_credentials_file"`
	FirebaseProjectID       string `mapstructure:"firebase_project_id" yaml:"firebase_project_id"`

	ResendKey string `mapstructure:"resend_key" yaml:"resend_key"`
	EmailFrom string `mapstructure:"email_from" yaml:"email_from"`
	ReplyTo   string `mapstructure:"reply_to" yaml:"reply_to"`

	CSRFKey        string   `mapstructure:"csrf_key" yaml:"csrf_key"`
	SecureCookies  bool     `mapstructure:"secure_cookies" yaml:"secure_cookies"`
	TrustedOrigins []string `mapstructure:"trusted_origins" yaml:"trusted_origins"`
	CORSOrigins    []string `mapstructure:"cors_origins" yaml:"cors_origins"`

	FallbackAddr   string `mapstructure:"fallback_addr" yaml:"fallback_addr"`
	FallbackDBPath string `mapstructure:"fallback_db_path" yaml:"fallback_db_path"`

	TelegramToken string `mapstructure:"telegram_token" yaml:"telegram_token"`

	SubmitTimeout time.Duration `mapstructure:"submit_timeout" yaml:"submit_timeout"`
	SlowRequest   time.Duration `mapstructure:"slow_request" yaml:"slow_request"`
	LogLevel      string        `mapstructure:"log_level" yaml:"log_level"`

	AdminEmail    string `mapstructure:"admin_email" yaml:"admin_email"`
	AdminPassword string `mapstructure:"admin_password" yaml:"admin_password"`
}

// defaults lists every key with its default value. Keys without a useful
// default are still listed so the matching env var is bound.
var defaults = map[string]any{
	"addr":                      ":8080",
	"env":                       "development",
	"db_path":                   "techfest.db",
	"backend":                   BackendSQLite,
	"firebase_credentials_file": "",
	"firebase_project_id":       "",
	"resend_key":                "",
	"email_from":                "TechFest <noreply@techfest.example>",
	"reply_to":                  "",
	"csrf_key":                  "",
	"secure_cookies":            false,
	"trusted_origins":           []string{},
	"cors_origins":              []string{},
	"fallback_addr":             ":3001",
	"fallback_db_path":          "db.json",
	"telegram_token":            "",
	"submit_timeout":            "15s",
	"slow_request":              "200ms",
	"log_level":                 "info",
	"admin_email":               "",
	"admin_password":            "",
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		Env:            "development",
		DBPath:         "techfest.db",
		Backend:        BackendSQLite,
		EmailFrom:      "TechFest <noreply@techfest.example>",
		TrustedOrigins: []string{},
		CORSOrigins:    []string{},
		FallbackAddr:   ":3001",
		FallbackDBPath: "db.json",
		SubmitTimeout:  15 * time.Second,
		SlowRequest:    200 * time.Millisecond,
		LogLevel:       "info",
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("techfest")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Setup ENV binding with TECHFEST_ prefix
	v.SetEnvPrefix("TECHFEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings so Unmarshal sees env-only values
	for key := range defaults {
		if err := v.BindEnv(key, "TECHFEST_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
	case BackendFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("firebase_project_id is required for the firestore backend")
		}
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendSQLite, BackendFirestore, c.Backend)
	}
	if c.SubmitTimeout <= 0 {
		return errors.New("submit_timeout must be positive")
	}
	if _, err := c.csrfKeyBytes(); err != nil {
		return err
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("admin_email and admin_password must be set together")
	}
	return nil
}

// IsProduction reports whether env is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SlogLevel maps log_level to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CSRFKeyBytes returns the 32-byte CSRF key. csrf_key may be 64 hex
// characters or 32 raw bytes; when unset a random key is generated, so
// tokens do not survive a restart.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	key, err := c.csrfKeyBytes()
	if err != nil || key != nil {
		return key, err
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating csrf key: %w", err)
	}
	return key, nil
}

func (c *Config) csrfKeyBytes() ([]byte, error) {
	switch len(c.CSRFKey) {
	case 0:
		return nil, nil
	case 64:
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil {
			return nil, fmt.Errorf("csrf_key: %w", err)
		}
		return key, nil
	case 32:
		return []byte(c.CSRFKey), nil
	}
	return nil, errors.New("csrf_key must be 32 bytes or 64 hex characters")
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/techfest/techfest.yml or $XDG_CONFIG_HOME/techfest/techfest.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "techfest", "techfest.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "techfest", "techfest.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "techfest.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return writeFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeFile(ProjectPath(), cfg)
}

// writeFile stores cfg as YAML. The file may hold secrets, so it is
// readable by the owner only.
func writeFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
