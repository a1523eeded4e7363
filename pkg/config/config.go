package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for twitterdl.
type Config struct {
	// Twitter API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Proxy routing for outbound requests
	Proxy ProxyConfig `yaml:"proxy" json:"proxy"`

	// Media download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter-specific configuration.
type TwitterConfig struct {
	// Authorization overrides the built-in app bearer token when set.
	Authorization string `yaml:"authorization" json:"authorization"`
	// Cookie is a pre-authenticated session cookie string.
	Cookie    string `yaml:"cookie" json:"cookie"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// RequestTimeout bounds every outbound call, including login flow steps.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// ProxyConfig holds outbound proxy routing configuration.
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
}

// DownloadConfig holds media download configuration.
type DownloadConfig struct {
	OutputDir           string        `yaml:"output_dir" json:"output_dir"`
	ConcurrentDownloads int           `yaml:"concurrent_downloads" json:"concurrent_downloads"`
	DownloadTimeout     time.Duration `yaml:"download_timeout" json:"download_timeout"`
	OverwriteExisting   bool          `yaml:"overwrite_existing" json:"overwrite_existing"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.132 Safari/537.36",
			RequestTimeout: 30 * time.Second,
		},
		Download: DownloadConfig{
			OutputDir:           "./downloads",
			ConcurrentDownloads: 3,
			DownloadTimeout:     60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv overrides configuration from environment variables.
func (c *Config) LoadFromEnv() error {
	if auth := os.Getenv("TWITTERDL_AUTHORIZATION"); auth != "" {
		c.Twitter.Authorization = auth
	}
	if cookie := os.Getenv("TWITTERDL_COOKIE"); cookie != "" {
		c.Twitter.Cookie = cookie
	}
	if ua := os.Getenv("TWITTERDL_USER_AGENT"); ua != "" {
		c.Twitter.UserAgent = ua
	}
	if host := os.Getenv("TWITTERDL_PROXY_HOST"); host != "" {
		c.Proxy.Enabled = true
		c.Proxy.Host = host
	}
	if port := os.Getenv("TWITTERDL_PROXY_PORT"); port != "" {
		if val, err := strconv.Atoi(port); err == nil && val > 0 {
			c.Proxy.Port = val
		}
	}
	if dir := os.Getenv("TWITTERDL_OUTPUT_DIR"); dir != "" {
		c.Download.OutputDir = dir
	}
	if concurrent := os.Getenv("TWITTERDL_CONCURRENT_DOWNLOADS"); concurrent != "" {
		if val, err := strconv.Atoi(concurrent); err == nil && val > 0 {
			c.Download.ConcurrentDownloads = val
		}
	}
	if level := os.Getenv("TWITTERDL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. An empty path checks
// the default locations; a missing default file is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (c *Config) findConfigFile() string {
	locations := []string{
		".twitterdl.yaml",
		".twitterdl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "twitterdl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".twitterdl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is consistent.
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Proxy.Enabled {
		if c.Proxy.Host == "" {
			errs = append(errs, errors.New("proxy host is required when proxy is enabled"))
		}
		if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
			errs = append(errs, errors.New("proxy port must be between 1 and 65535"))
		}
	}
	if c.Download.ConcurrentDownloads <= 0 {
		errs = append(errs, errors.New("concurrent downloads must be positive"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load loads configuration from all sources.
// Precedence: environment variables > .env file > config file > defaults.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twitterdl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
