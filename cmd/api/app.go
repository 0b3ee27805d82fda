package main

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/zhouzirui/ai-joe/backend/internal/config"
	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/model/persona"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/ai-joe/backend/internal/service/chat"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
	speechservice "github.com/zhouzirui/ai-joe/backend/internal/service/speech"
)

type app struct {
	conversation *conversation.Service
	speech       *speechservice.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.Default()

	store := chatservice.NewMemoryStore(
		chatservice.WithMaxTurns(cfg.AI.MaxTurns),
		chatservice.WithMaxMemories(cfg.AI.MaxMemories),
	)

	generator, err := newGenerator(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}
	if generator == nil {
		logger.Warn("text generation credentials missing, send-message will answer 500", "provider", cfg.AI.Provider)
	}

	convCfg := conversation.Config{
		Model:        cfg.AI.ModelName(),
		SystemPrompt: persona.Resolve(cfg.AI.SystemPrompt).SystemPrompt,
		WebSearch:    cfg.AI.WebSearch,
		MaxTurns:     store.MaxTurns(),
	}
	if cfg.AI.Provider == config.ProviderOpenAI {
		convCfg.VectorStoreID = cfg.AI.VectorStoreID
	}

	return &app{
		conversation: conversation.NewService(store, generator, convCfg),
		speech:       newSpeechService(cfg),
	}, nil
}

// newGenerator returns nil, without error, when the selected provider has no
// credentials.
func newGenerator(ctx context.Context, cfg config.AIConfig) (ai.Generator, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	switch cfg.Provider {
	case config.ProviderArk:
		cm, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create ark chat model", goerr.V("model", cfg.Ark.Model))
		}
		return ai.NewArkGenerator(cm, cfg.Ark.Model), nil
	default:
		return ai.NewOpenAIGenerator(func(o *ai.OpenAIOptions) {
			o.APIKey = cfg.APIKey
			o.BaseURL = cfg.BaseURL
			o.Timeout = cfg.Timeout
		}), nil
	}
}

func newSpeechService(cfg *config.Config) *speechservice.Service {
	logger := logging.Default()

	var transcriber speechservice.Transcriber
	if cfg.AI.APIKey != "" {
		t, err := speechservice.NewOpenAITranscriber(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.Speech.TranscribeModel)
		if err != nil {
			logger.Warn("transcription disabled", "error", err)
		} else {
			transcriber = t
		}
	}

	var synthesizer speechservice.Synthesizer
	if cfg.Speech.TTSEnabled() {
		s, err := speechservice.NewElevenLabsSynthesizer(speechservice.ElevenLabsOptions{
			APIKey:          cfg.Speech.ElevenLabsAPIKey,
			BaseURL:         cfg.Speech.ElevenLabsBaseURL,
			Voice:           cfg.Speech.VoiceID,
			ModelID:         cfg.Speech.VoiceModelID,
			Stability:       cfg.Speech.Stability,
			SimilarityBoost: cfg.Speech.SimilarityBoost,
		})
		if err != nil {
			logger.Warn("text-to-speech disabled", "error", err)
		} else {
			synthesizer = s
		}
	}

	return speechservice.NewService(transcriber, synthesizer)
}
