package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_ADDR", "LOG_LEVEL", "MISTRAL_API_KEY", "MISTRAL_BASE_URL", "LLM_MODEL",
	"LLM_TIMEOUT", "RATE_LIMIT_INTERVAL", "RATE_LIMIT_MAX_QUEUE", "DB_PATH", "CATALOG_PATH",
}

// isolate clears config variables and runs the test from an empty directory
// so a developer's .env does not leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, c.LogLevel)
	assert.Equal(t, "mistral-small-latest", c.LLMModel)
	assert.Equal(t, 30*time.Second, c.LLMTimeout)
	assert.Equal(t, time.Second, c.RateLimitInterval)
	assert.Zero(t, c.RateLimitMaxQueue)
	assert.Empty(t, c.MistralAPIKey)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("MISTRAL_API_KEY", "k")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RATE_LIMIT_INTERVAL", "1500ms")
	t.Setenv("RATE_LIMIT_MAX_QUEUE", "100")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "k", c.MistralAPIKey)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, 1500*time.Millisecond, c.RateLimitInterval)
	assert.Equal(t, 100, c.RateLimitMaxQueue)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("MISTRAL_API_KEY=from-file\nLLM_MODEL=mistral-large-latest\n"), 0o600))
	t.Setenv("LLM_MODEL", "from-env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.MistralAPIKey)
	assert.Equal(t, "from-env", c.LLMModel, "environment wins over .env")
}

func TestLoad_Invalid(t *testing.T) {
	for key, val := range map[string]string{
		"LOG_LEVEL":            "loud",
		"LLM_TIMEOUT":          "soon",
		"RATE_LIMIT_INTERVAL":  "-1s",
		"RATE_LIMIT_MAX_QUEUE": "-3",
	} {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
