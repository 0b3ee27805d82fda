package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/m-mizutani/goerr/v2"
)

const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"

	DefaultModel       = "gpt-4o-mini"
	DefaultMaxTurns    = 24
	DefaultMaxMemories = 100
)

// Config aggregates every setting of the service.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	AI     AIConfig
	Speech SpeechConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Log:    LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
		AI:     ai,
		Speech: speech,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr        string
	AllowOrigin string
}

// LogConfig describes logging output.
type LogConfig struct {
	Level string
}

// NormalizeAddr turns a PORT value into a listen address.
func NormalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// allow ":8080" or "127.0.0.1:8080"
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

func loadServerConfig() (ServerConfig, error) {
	addr, err := NormalizeAddr(os.Getenv("PORT"))
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		Addr:        addr,
		AllowOrigin: getEnvOrDefault("CORS_ALLOW_ORIGIN", "*"),
	}, nil
}

// AIConfig describes the text-generation backend and the conversation limits.
type AIConfig struct {
	Provider      string
	APIKey        string
	BaseURL       string
	Model         string
	VectorStoreID string
	WebSearch     bool
	Timeout       time.Duration
	SystemPrompt  string
	MaxTurns      int
	MaxMemories   int
	Ark           ArkConfig
}

// ArkConfig describes the Volcengine Ark backend used when AI_PROVIDER=ark.
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the selected provider has its credentials.
func (c AIConfig) Enabled() bool {
	if c.Provider == ProviderArk {
		return c.Ark.Enabled()
	}
	return c.APIKey != ""
}

// ModelName returns the model identifier the selected provider will be asked for.
func (c AIConfig) ModelName() string {
	if c.Provider == ProviderArk {
		return c.Ark.Model
	}
	return c.Model
}

// Enabled reports whether the Ark credentials and model are present.
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates an Ark chat model from the configuration.
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, goerr.New("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	webSearch, err := parseBoolEnv("OPENAI_WEB_SEARCH", false)
	if err != nil {
		return AIConfig{}, err
	}

	var timeout time.Duration
	if seconds, err := parseOptionalIntEnv("OPENAI_TIMEOUT"); err != nil {
		return AIConfig{}, err
	} else if seconds != nil && *seconds > 0 {
		timeout = time.Duration(*seconds) * time.Second
	}

	maxTurns, err := parseLimitEnv("CHAT_MAX_TURNS", DefaultMaxTurns)
	if err != nil {
		return AIConfig{}, err
	}

	maxMemories, err := parseLimitEnv("CHAT_MAX_MEMORIES", DefaultMaxMemories)
	if err != nil {
		return AIConfig{}, err
	}

	arkCfg, err := loadArkConfig()
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:      provider,
		APIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:       strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		Model:         getEnvOrDefault("OPENAI_MODEL", DefaultModel),
		VectorStoreID: strings.TrimSpace(os.Getenv("OPENAI_VECTOR_STORE_ID")),
		WebSearch:     webSearch,
		Timeout:       timeout,
		SystemPrompt:  strings.TrimSpace(os.Getenv("SYSTEM_PROMPT")),
		MaxTurns:      maxTurns,
		MaxMemories:   maxMemories,
		Ark:           arkCfg,
	}, nil
}

func loadArkConfig() (ArkConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ArkConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return ArkConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return ArkConfig{}, err
	}

	return ArkConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the transcription and text-to-speech upstreams.
type SpeechConfig struct {
	TranscribeModel   string
	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string
	VoiceID           string
	VoiceModelID      string
	Stability         float64
	SimilarityBoost   float64
}

// TTSEnabled reports whether the ElevenLabs key is present.
func (c SpeechConfig) TTSEnabled() bool {
	return c.ElevenLabsAPIKey != ""
}

func loadSpeechConfig() (SpeechConfig, error) {
	stability := 0.34
	if v, err := parseOptionalFloatEnv("ELEVENLABS_STABILITY"); err != nil {
		return SpeechConfig{}, err
	} else if v != nil {
		stability = *v
	}

	similarity := 0.8
	if v, err := parseOptionalFloatEnv("ELEVENLABS_SIMILARITY_BOOST"); err != nil {
		return SpeechConfig{}, err
	} else if v != nil {
		similarity = *v
	}

	return SpeechConfig{
		TranscribeModel:   getEnvOrDefault("OPENAI_TRANSCRIBE_MODEL", "whisper-1"),
		ElevenLabsAPIKey:  strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")),
		ElevenLabsBaseURL: getEnvOrDefault("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
		VoiceID:           getEnvOrDefault("ELEVENLABS_VOICE_ID", "Rachel"),
		VoiceModelID:      getEnvOrDefault("ELEVENLABS_MODEL_ID", "eleven_multilingual_v2"),
		Stability:         stability,
		SimilarityBoost:   similarity,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, goerr.Wrap(err, "invalid boolean env", goerr.V("key", key), goerr.V("value", raw))
	}
	return val, nil
}

// parseLimitEnv reads a positive limit, keeping defaultValue when unset.
func parseLimitEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	if *val < 1 {
		return 0, goerr.New("limit must be positive", goerr.V("key", key), goerr.V("value", *val))
	}
	return *val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid float env", goerr.V("key", key), goerr.V("value", value))
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid integer env", goerr.V("key", key), goerr.V("value", value))
	}
	return &val, nil
}
