// Package config loads service configuration from config.yaml and
// SOLSPY_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	RPC struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"rpc"`

	Indexer struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
	} `mapstructure:"indexer"`

	Feed struct {
		URL    string `mapstructure:"url"`
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"feed"`

	Postgres struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"postgres"`

	Ingest struct {
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"ingest"`

	API struct {
		// Enabled gates whether the public endpoints are exposed at all.
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	} `mapstructure:"api"`

	Metrics struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`

	// UseMemory switches the event store to the in-memory implementation.
	UseMemory bool `mapstructure:"use_memory"`
}

// Load reads configuration from the given directory (falling back to the
// working directory), applying environment overrides. A missing config
// file is fine as long as the required values arrive via environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("SOLSPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees env values for keys viper already knows about,
	// so bind every key explicitly to keep env-only deployments working.
	for _, key := range []string{
		"rpc.endpoint",
		"indexer.base_url",
		"indexer.api_key",
		"feed.url",
		"feed.api_key",
		"postgres.dsn",
		"ingest.interval",
		"api.enabled",
		"api.addr",
		"metrics.addr",
		"use_memory",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	v.SetDefault("ingest.interval", time.Minute)
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.addr", ":8080")
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("use_memory", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RPC.Endpoint == "" {
		return errors.New("rpc.endpoint is required")
	}
	if c.Indexer.BaseURL == "" {
		return errors.New("indexer.base_url is required")
	}
	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if !c.UseMemory && c.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required (or set use_memory)")
	}
	return nil
}
