// Package config defines the configuration of hex-offer and loads it from
// YAML with viper.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/osamarehman/hex-docs/internal/cache"
	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. HEXOFFER_API_BASEURL.
const EnvPrefix = "HEXOFFER"

// Configuration holds all configuration for hex-offer.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Financing FinancingConfig `yaml:"financing,omitempty"`
	API       APIConfig       `yaml:"api,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// FinancingConfig holds the terms of both calculation modes.
type FinancingConfig struct {
	Catalog     offer.Terms `yaml:"catalog,omitempty"`
	Interactive offer.Terms `yaml:"interactive,omitempty"`
}

// APIConfig configures the heating-offer API client.
type APIConfig struct {
	BaseURL    string        `yaml:"baseURL,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"maxRetries,omitempty"`
}

// CacheConfig configures the lookup cache. An empty RedisAddr selects the
// in-memory cache.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redisAddr,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty"`
	TTL           time.Duration `yaml:"ttl,omitempty"`
}

// Backend returns the settings needed to pick a cache backend.
func (c CacheConfig) Backend() cache.Config {
	return cache.Config{
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"` // e.g. 256K, 1M
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("financing.catalog.downPaymentPercent", constants.CatalogDownPaymentPercent)
	v.SetDefault("financing.catalog.termMonths", constants.CatalogTermMonths)
	v.SetDefault("financing.interactive.downPaymentPercent", constants.InteractiveDownPaymentPercent)
	v.SetDefault("financing.interactive.termMonths", constants.InteractiveTermMonths)
	v.SetDefault("api.baseURL", constants.DefaultAPIBaseURL)
	v.SetDefault("api.timeout", fmt.Sprintf("%ds", constants.DefaultAPITimeoutSeconds))
	v.SetDefault("api.maxRetries", constants.DefaultAPIMaxRetries)
	v.SetDefault("cache.redisAddr", "")
	v.SetDefault("cache.redisPassword", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.ttl", fmt.Sprintf("%ds", constants.DefaultCacheTTLSeconds))
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", "256K")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	conf, err := decode(newViper())
	if err != nil {
		// Defaults are constants; a decode failure is a programming error.
		panic(err)
	}
	return conf
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	for _, mode := range []struct {
		name  string
		terms offer.Terms
	}{
		{"catalog", c.Financing.Catalog},
		{"interactive", c.Financing.Interactive},
	} {
		if err := validation.ValidateTerms(mode.terms.DownPaymentPercent, mode.terms.TermMonths); err != nil {
			warnings = append(warnings, fmt.Sprintf("financing.%s: %v", mode.name, err))
		}
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		warnings = append(warnings, "api.baseURL is empty, the default API will be used")
	}
	if c.API.Timeout <= 0 {
		warnings = append(warnings, fmt.Sprintf("api.timeout must be positive, got %s", c.API.Timeout))
	}
	if c.API.MaxRetries < 0 {
		warnings = append(warnings, fmt.Sprintf("api.maxRetries must not be negative, got %d", c.API.MaxRetries))
	}
	if c.Cache.TTL <= 0 {
		warnings = append(warnings, fmt.Sprintf("cache.ttl must be positive, got %s", c.Cache.TTL))
	}

	return warnings
}
