// Package config loads sv settings from defaults, a YAML file, SV_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// AppName names the XDG directories.
const AppName = "spotus_viewer"

// Defaults.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultPageSize = 10
	DefaultTheme    = "dark"
	MinPageSize     = 10
	MaxPageSize     = 50
)

// Config holds client settings.
type Config struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	SessionCookie string        `mapstructure:"session_cookie" yaml:"session_cookie,omitempty"`
	CSRFToken     string        `mapstructure:"csrf_token" yaml:"csrf_token,omitempty"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PageSize      int           `mapstructure:"default_page_size" yaml:"default_page_size"`
	Moderator     string        `mapstructure:"moderator" yaml:"moderator,omitempty"`
	AuditDB       string        `mapstructure:"audit_db" yaml:"audit_db,omitempty"`
	LogFile       string        `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Theme         string        `mapstructure:"theme" yaml:"theme"`
}

// ConfigDir returns the XDG config directory for sv.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the XDG data directory for sv.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// StateDir returns the XDG state directory for sv.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Timeout:  DefaultTimeout,
		PageSize: DefaultPageSize,
		AuditDB:  filepath.Join(DataDir(), "audit.db"),
		LogFile:  filepath.Join(StateDir(), "sv.log"),
		Theme:    DefaultTheme,
	}
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("base_url", "")
	v.SetDefault("session_cookie", "")
	v.SetDefault("csrf_token", "")
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("default_page_size", d.PageSize)
	v.SetDefault("moderator", os.Getenv("USER"))
	v.SetDefault("audit_db", d.AuditDB)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("theme", d.Theme)
}

// Load reads configuration into v and decodes it. Flags must already be
// bound on v by the caller. An explicit path that does not exist returns
// ErrConfigNotFound; a missing default file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, ErrConfigNotFound
			}
			return nil, fmt.Errorf("stat config: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return &c, nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.PageSize < MinPageSize || c.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// Save writes c to path as YAML, creating the directory. The file holds the
// session cookie, so it is only readable by the owner.
func Save(c *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
