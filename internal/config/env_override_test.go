package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("MODEL_PROVIDER replaces provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MODEL_PROVIDER", "gemini")

		cfg := &Config{LLM: LLMConfig{Provider: "openai"}}
		cfg.applyEnvOverrides()

		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})

	t.Run("API keys do not switch provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "g-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.LLM.OpenAI.APIKey)
		assert.Equal(t, "g-key", cfg.LLM.Gemini.APIKey)
		assert.Equal(t, ProviderMock, cfg.LLM.Provider)
	})

	t.Run("model and base URL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_MODEL", "gpt-4.1")
		t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
		t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
		t.Setenv("GEMINI_BASE_URL", "http://localhost:9998")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "gpt-4.1", cfg.LLM.OpenAI.Model)
		assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.OpenAI.BaseURL)
		assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Gemini.Model)
		assert.Equal(t, "http://localhost:9998", cfg.LLM.Gemini.BaseURL)
	})

	t.Run("empty values leave config alone", func(t *testing.T) {
		clearEnv(t)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestEnvOverrides_Timeout(t *testing.T) {
	t.Run("duration string", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_TIMEOUT", "1m30s")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 90*time.Second, cfg.GetLLMTimeout())
	})

	t.Run("bare seconds", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LLM_TIMEOUT", "7")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 7*time.Second, cfg.GetLLMTimeout())
	})
}

func TestEnvOverrides_StoreAndLogging(t *testing.T) {
	clearEnv(t)
	t.Setenv("TASKPILOT_DB", "/tmp/tasks.db")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/tasks.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
