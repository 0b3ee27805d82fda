package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "AI_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_WEB_SEARCH", "CHAT_MAX_TURNS", "CHAT_MAX_MEMORIES", "ELEVENLABS_VOICE_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, DefaultModel, cfg.AI.Model)
	assert.Equal(t, DefaultMaxTurns, cfg.AI.MaxTurns)
	assert.Equal(t, DefaultMaxMemories, cfg.AI.MaxMemories)
	assert.False(t, cfg.AI.WebSearch)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, "Rachel", cfg.Speech.VoiceID)
	assert.InDelta(t, 0.34, cfg.Speech.Stability, 1e-9)
	assert.InDelta(t, 0.8, cfg.Speech.SimilarityBoost, 1e-9)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("OPENAI_VECTOR_STORE_ID", "vs_123")
	t.Setenv("OPENAI_WEB_SEARCH", "true")
	t.Setenv("OPENAI_TIMEOUT", "30")
	t.Setenv("CHAT_MAX_TURNS", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "gpt-4.1", cfg.AI.ModelName())
	assert.Equal(t, "vs_123", cfg.AI.VectorStoreID)
	assert.True(t, cfg.AI.WebSearch)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.AI.MaxTurns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":              "80 80",
		"OPENAI_WEB_SEARCH": "maybe",
		"CHAT_MAX_TURNS":    "0",
		"AI_PROVIDER":       "bard",
		"ARK_TEMPERATURE":   "hot",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestArkProviderEnabled(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ark")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("ARK_MODEL", "doubao-pro")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "doubao-pro", cfg.AI.ModelName())
}
