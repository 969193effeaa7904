package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const appDir = "spps_tui"

// Config holds the client's configuration.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	CSRF struct {
		CookieName string `yaml:"cookie_name"`
		HeaderName string `yaml:"header_name"`
	} `yaml:"csrf"`
	Session struct {
		Remember bool   `yaml:"remember"`
		CacheDir string `yaml:"cache_dir"`
	} `yaml:"session"`
	Log struct {
		File        string `yaml:"file"`
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	DownloadDir string `yaml:"download_dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000/api"
	cfg.API.TimeoutSeconds = 30
	cfg.CSRF.CookieName = "csrftoken"
	cfg.CSRF.HeaderName = "X-CSRFToken"
	cfg.Session.Remember = true
	cfg.Log.Level = "info"

	cacheDir := os.TempDir()
	if dir, err := os.UserCacheDir(); err == nil {
		cacheDir = dir
	}
	cfg.Session.CacheDir = filepath.Join(cacheDir, appDir)
	cfg.Log.File = filepath.Join(cfg.Session.CacheDir, "spps.log")
	cfg.DownloadDir = "."
	return cfg
}

// DefaultPath is <user config dir>/spps_tui/config.yml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(dir, appDir, "config.yml")
}

// LoadConfig reads configuration from the specified YAML file on top of the
// defaults. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if v := os.Getenv("SPPS_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("SPPS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	if c.CSRF.CookieName == "" || c.CSRF.HeaderName == "" {
		return errors.New("csrf.cookie_name and csrf.header_name are required")
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}
