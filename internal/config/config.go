package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no path is given.
const DefaultPath = "replet.yaml"

// Source kinds.
const (
	SourceAuto     = "auto"
	SourceReadline = "readline"
	SourceStdio    = "stdio"
	SourceRedis    = "redis"
	SourceJSON     = "json"
)

// RedisConfig configures the redis line source.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`

	// Exclusive makes this process the only consumer of the input queue.
	Exclusive bool          `yaml:"exclusive" json:"exclusive"`
	LeaseTTL  time.Duration `yaml:"lease_ttl" json:"lease_ttl"`
}

// Config is the host configuration file.
type Config struct {
	// Schema is the path of the command schema. Empty means the built-in demo.
	Schema string `yaml:"schema" json:"schema"`
	Prompt string `yaml:"prompt" json:"prompt"`
	// Source is one of auto, readline, stdio, json or redis.
	Source          string      `yaml:"source" json:"source"`
	Redis           RedisConfig `yaml:"redis" json:"redis"`
	MetricsAddr     string      `yaml:"metrics_addr" json:"metrics_addr"`
	LogLevel        string      `yaml:"log_level" json:"log_level"`
	ContinueOnPanic bool        `yaml:"continue_on_panic" json:"continue_on_panic"`
	VimMode         bool        `yaml:"vim_mode" json:"vim_mode"`
	NoBanner        bool        `yaml:"no_banner" json:"no_banner"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Prompt:   "replet",
		Source:   SourceAuto,
		LogLevel: "warn",
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Prefix:   "replet:",
			LeaseTTL: 30 * time.Second,
		},
	}
}

// Load reads a configuration file (YAML or JSON) on top of Default.
// A missing file at DefaultPath is not an error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Source {
	case "", SourceAuto, SourceReadline, SourceStdio, SourceJSON, SourceRedis:
	default:
		return fmt.Errorf("invalid source %q: expected auto, readline, stdio, json or redis", c.Source)
	}
	if c.Source == SourceRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis source requires redis.addr")
	}
	if c.Redis.Exclusive && c.Redis.LeaseTTL < time.Millisecond {
		return fmt.Errorf("redis.lease_ttl must be at least 1ms, got %s", c.Redis.LeaseTTL)
	}
	return nil
}
