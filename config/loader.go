package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the configuration file path.
const ConfigEnv = "BINGO_CONFIG"

// DefaultPath returns the configuration file used when none is given:
// $BINGO_CONFIG, else <user config dir>/bingo/config.yaml.
func DefaultPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bingo.yaml"
	}
	return filepath.Join(dir, "bingo", "config.yaml")
}

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if yamlPath != "" {
		if err := loadYAML(&cfg, yamlPath); err != nil {
			return nil, fmt.Errorf("config yaml: %w", err)
		}
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays non-empty environment variables onto cfg.
func loadEnv(cfg *Config) {
	setString(&cfg.Cache.Dir, "BINGO_CACHE_DIR")
	setString(&cfg.Cache.Backend, "BINGO_CACHE_BACKEND")
	setString(&cfg.Cache.RedisURL, "BINGO_REDIS_URL")
	setString(&cfg.Cache.KeyPrefix, "BINGO_REDIS_PREFIX")
	setDuration(&cfg.Cache.FlushInterval, "BINGO_FLUSH_INTERVAL")

	setString(&cfg.Bing.BaseURL, "BINGO_BING_URL")
	setString(&cfg.Bing.UserAgent, "BINGO_USER_AGENT")
	setDuration(&cfg.Bing.Timeout, "BINGO_BING_TIMEOUT")

	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "BINGO_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "BINGO_OPENAI_BASE_URL")

	setInt(&cfg.Retry.MaxRetries, "BINGO_RETRY_MAX")
	setInt(&cfg.RateLimit.RequestsPerMinute, "BINGO_RATE_RPM")
	setInt(&cfg.RateLimit.Burst, "BINGO_RATE_BURST")

	setString(&cfg.Logging.Level, "BINGO_LOG_LEVEL")
	setString(&cfg.Logging.Format, "BINGO_LOG_FORMAT")
	setString(&cfg.Logging.Debug, "BINGO_DEBUG")
}

// validate checks value ranges and required combinations.
func validate(cfg *Config) error {
	switch cfg.Cache.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if cfg.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q is not one of file, redis, memory", cfg.Cache.Backend)
	}
	if cfg.Cache.FlushInterval <= 0 {
		return errors.New("cache.flush_interval must be > 0")
	}
	if cfg.Bing.BaseURL == "" {
		return errors.New("bing.base_url is required")
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must be >= 0")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 || cfg.RateLimit.Burst < 0 {
		return errors.New("rate_limit values must be >= 0")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not text or json", cfg.Logging.Format)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
