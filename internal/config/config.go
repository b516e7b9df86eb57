// Package config provides configuration management for gtuber using Viper:
// file, environment variable (GTUBER_ prefix), and default-value layering.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultHTTPTimeout       = 7 * time.Second
	defaultRetryAttempts     = 2
	defaultRetryDelay        = 500 * time.Millisecond
	defaultHeartbeatInterval = 5 * time.Second
	defaultProxyPort         = 0 // 0 = let the OS pick an ephemeral port
)

// Config holds all configuration for gtuber and gtuberctl.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Plugin    PluginConfig    `mapstructure:"plugin"`
	Heartbeat HeartbeatConfig `mapstructure:"heartbeat"`
	Proxy     ProxyConfig     `mapstructure:"proxy"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// HTTPConfig holds settings for the resilient HTTP client. client.New
// builds its HTTP client from httpclient.DefaultConfig and does not read
// these values.
type HTTPConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// PluginConfig holds plugin discovery and caching configuration.
type PluginConfig struct {
	Path          string `mapstructure:"path"` // os.PathListSeparator-joined, set from GTUBER_PLUGIN_PATH; plugin.DirPaths reads that variable itself, not this field
	CacheDisabled bool   `mapstructure:"cache_disabled"`
}

// HeartbeatConfig holds defaults for MediaInfo heartbeats.
type HeartbeatConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ProxyConfig holds defaults for MediaInfo local proxies.
type ProxyConfig struct {
	Port int `mapstructure:"port"` // 0 = ephemeral
}

// Load reads configuration from configPath (or the default search
// locations if empty) layered under environment variables prefixed
// GTUBER_ (e.g. GTUBER_HTTP_TIMEOUT=10s) and SetDefaults' built-in values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(xdgConfigDir())
		v.AddConfigPath("/etc/gtuber")
	}

	v.SetEnvPrefix("GTUBER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// xdgConfigDir returns $XDG_CONFIG_HOME/gtuber, falling back to
// ~/.config/gtuber.
func xdgConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "gtuber")
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("http.timeout", defaultHTTPTimeout)
	v.SetDefault("http.retry_attempts", defaultRetryAttempts)
	v.SetDefault("http.retry_delay", defaultRetryDelay)
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; rv:78.0) Gecko/20100101 Firefox/78.0")

	v.SetDefault("plugin.path", "")
	v.SetDefault("plugin.cache_disabled", false)

	v.SetDefault("heartbeat.interval", defaultHeartbeatInterval)

	v.SetDefault("proxy.port", defaultProxyPort)
}
