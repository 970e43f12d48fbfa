package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds storefront's runtime settings.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/storefront/config.toml"
	defaultLogFile        = "~/.local/state/storefront/storefront.log"
	defaultAPIURL         = "http://localhost:3001"
	defaultRequestTimeout = 5 * time.Second
	defaultPollInterval   = 30 * time.Second
)

// Overrides are read from the environment and win over the config file.
// Zero values leave the file or default in place.
type Overrides struct {
	APIURL                string `env:"STOREFRONT_API_URL"`
	RequestTimeoutSeconds int    `env:"STOREFRONT_REQUEST_TIMEOUT_SECONDS"`
	PollIntervalSeconds   int    `env:"STOREFRONT_POLL_INTERVAL_SECONDS"`
	LogFile               string `env:"STOREFRONT_LOG_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load reads the config file at path (or the default location), falls back
// to defaults when it is missing, and applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := loadFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	var ov Overrides
	if err := ParseEnv(&ov); err != nil {
		return Config{}, err
	}
	ov.apply(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL                string `toml:"api_url"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		PollIntervalSeconds   int    `toml:"poll_interval_seconds"`
		LogFile               string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	Overrides{
		APIURL:                raw.APIURL,
		RequestTimeoutSeconds: raw.RequestTimeoutSeconds,
		PollIntervalSeconds:   raw.PollIntervalSeconds,
		LogFile:               raw.LogFile,
	}.apply(cfg)
	return nil
}

func (o Overrides) apply(cfg *Config) {
	if v := strings.TrimSpace(o.APIURL); v != "" {
		cfg.APIURL = v
	}
	if o.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(o.RequestTimeoutSeconds) * time.Second
	}
	if o.PollIntervalSeconds > 0 {
		cfg.PollInterval = time.Duration(o.PollIntervalSeconds) * time.Second
	}
	if v := strings.TrimSpace(o.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
}

// LogPath returns the log file path, defaulting when unset.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogFile) == "" {
		return mustExpand(defaultLogFile)
	}
	return c.LogFile
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
