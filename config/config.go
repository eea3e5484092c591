// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "AUTH_"

// Config holds all service configuration
type Config struct {
	HTTP struct {
		Addr string `koanf:"addr"`
	} `koanf:"http"`

	Redis struct {
		URL string `koanf:"url"`
	} `koanf:"redis"`

	Store struct {
		// Backend selects the store implementations: "memory" or "redis".
		Backend string `koanf:"backend"`
	} `koanf:"store"`

	Auth struct {
		SessionTTL   time.Duration `koanf:"sessionTTL"`
		TwoFACodeTTL time.Duration `koanf:"twoFACodeTTL"`
		// SigningKeyFile points at a PEM-encoded ECDSA private key. When
		// empty a fresh key is generated at boot, which invalidates all
		// outstanding tokens on restart.
		SigningKeyFile string `koanf:"signingKeyFile"`
	} `koanf:"auth"`

	Log struct {
		Level  string `koanf:"level"`
		Pretty bool   `koanf:"pretty"`
	} `koanf:"log"`
}

// Load reads configuration from the given YAML file (skipped when absent)
// and applies AUTH_* environment overrides, e.g. AUTH_REDIS_URL.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// AUTH_REDIS_URL -> redis.url
			key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
			return strings.ReplaceAll(key, "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: false}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = ":9000"
	cfg.Redis.URL = "redis://localhost:6379/0"
	cfg.Store.Backend = "memory"
	cfg.Auth.SessionTTL = 15 * time.Minute
	cfg.Auth.TwoFACodeTTL = 10 * time.Minute
	cfg.Log.Level = "info"

	return cfg
}
