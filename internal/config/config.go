package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr          string
	LogLevel          slog.Level
	MistralAPIKey     string
	MistralBaseURL    string
	LLMModel          string
	LLMTimeout        time.Duration
	RateLimitInterval time.Duration
	RateLimitMaxQueue int
	DBPath            string
	CatalogPath       string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are used for keys the environment leaves unset or
// empty. The API key is not checked here; the provider client rejects an
// empty one.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	c := Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		MistralAPIKey:  os.Getenv("MISTRAL_API_KEY"),
		MistralBaseURL: envOr("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		LLMModel:       envOr("LLM_MODEL", "mistral-small-latest"),
		DBPath:         envOr("DB_PATH", "./data/misty.db"),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
	}

	var err error
	if c.LLMTimeout, err = durationEnv("LLM_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if c.RateLimitInterval, err = durationEnv("RATE_LIMIT_INTERVAL", time.Second); err != nil {
		return Config{}, err
	}
	if c.RateLimitMaxQueue, err = intEnv("RATE_LIMIT_MAX_QUEUE", 0); err != nil {
		return Config{}, err
	}

	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	c.LogLevel = level

	return c, nil
}

// loadDotEnv copies values from path into the environment. An empty variable
// counts as unset, so the file can fill it.
func loadDotEnv(path string) error {
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	for k, v := range vals {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, v)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
