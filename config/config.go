// Package config loads bingo settings from defaults, an optional YAML file
// and BINGO_* environment variables.
package config

import "time"

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all settings used by the CLI.
type Config struct {
	Cache     Cache     `yaml:"cache"`
	Bing      Bing      `yaml:"bing"`
	OpenAI    OpenAI    `yaml:"openai"`
	Retry     Retry     `yaml:"retry"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Logging   Logging   `yaml:"logging"`
}

// Cache configures where session caches live.
type Cache struct {
	Dir           string        `yaml:"dir"`            // Directory of <pair>.json files (file backend)
	Backend       string        `yaml:"backend"`        // file, redis or memory
	RedisURL      string        `yaml:"redis_url"`      // redis://host:port/db
	KeyPrefix     string        `yaml:"key_prefix"`     // Redis key prefix
	FlushInterval time.Duration `yaml:"flush_interval"` // Sweep and save period
}

// Bing configures the web translator client.
type Bing struct {
	BaseURL   string        `yaml:"base_url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// OpenAI configures the alternative engine.
type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Retry configures retries of failed translations. MaxRetries 0 disables them.
type Retry struct {
	MaxRetries int           `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
}

// RateLimit throttles outgoing translations. RequestsPerMinute 0 disables it.
type RateLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Debug  string `yaml:"debug"`  // namespaces to enable, like BINGO_DEBUG
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Cache: Cache{
			Backend:       BackendFile,
			KeyPrefix:     "bingo:cache:",
			FlushInterval: time.Second,
		},
		Bing: Bing{
			BaseURL: "https://www.bing.com",
			Timeout: 15 * time.Second,
		},
		OpenAI: OpenAI{
			Model: "gpt-4o-mini",
		},
		Retry: Retry{
			MaxRetries: 2,
			BaseDelay:  500 * time.Millisecond,
			MaxDelay:   10 * time.Second,
		},
		Logging: Logging{
			Level:  "warn",
			Format: "text",
		},
	}
}
