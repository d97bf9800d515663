package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Logger LoggerConfig `mapstructure:"logger"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// CacheConfig describes the on-disk list cache. The same root also holds
// quarantine batch directories.
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// FetchConfig describes the remote adware description list sources.
// Each source is a URL serving one path pattern per line.
type FetchConfig struct {
	Sources []string      `mapstructure:"sources"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Syslog bool   `mapstructure:"syslog"`
}

// DefaultSources is the built-in adware description list, Apple's curated
// file list for common adware families.
var DefaultSources = []string{
	"https://gist.githubusercontent.com/sheagcraig/5c76604f823d45792952/raw/8e8eaa9f69905265912ccc615949505558ff40f6/AppleAdwareList",
}

// DefaultCacheDir is the well-known cache root, created on first use.
const DefaultCacheDir = "/Library/Application Support/adwareguard"

// Load reads configuration from file and environment variables.
//
// Unlike a server deployment, this tool is typically invoked by a device
// management agent with no config file present, so a missing file is not an
// error; defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("app.name", "adwareguard")
	v.SetDefault("app.version", "dev")
	v.SetDefault("cache.dir", DefaultCacheDir)
	v.SetDefault("fetch.sources", DefaultSources)
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.syslog", true)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/adwareguard")
	}

	// Environment variables
	v.SetEnvPrefix("ADWAREGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("cache.dir", "ADWAREGUARD_CACHE_DIR")
	v.BindEnv("fetch.timeout", "ADWAREGUARD_FETCH_TIMEOUT")
	v.BindEnv("logger.level", "ADWAREGUARD_LOGGER_LEVEL")
	v.BindEnv("logger.syslog", "ADWAREGUARD_LOGGER_SYSLOG")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
