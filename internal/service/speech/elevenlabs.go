package speech

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/m-mizutani/goerr/v2"

	"github.com/zhouzirui/ai-joe/backend/internal/model/speech"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
)

// ElevenLabsOptions configure the ElevenLabs synthesizer.
type ElevenLabsOptions struct {
	APIKey          string
	BaseURL         string
	Voice           string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	HTTPClient      *http.Client
}

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech endpoint.
type ElevenLabsSynthesizer struct {
	opts ElevenLabsOptions
}

// NewElevenLabsSynthesizer validates the options and creates a synthesizer.
func NewElevenLabsSynthesizer(opts ElevenLabsOptions) (*ElevenLabsSynthesizer, error) {
	key, err := resolveAPIKey(opts.APIKey, "ELEVENLABS_API_KEY")
	if err != nil {
		return nil, err
	}
	opts.APIKey = key

	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.elevenlabs.io/v1"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Voice == "" {
		opts.Voice = "Rachel"
	}
	if opts.ModelID == "" {
		opts.ModelID = "eleven_multilingual_v2"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &ElevenLabsSynthesizer{opts: opts}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text            string        `json:"text"`
	ModelID         string        `json:"model_id"`
	VoiceSettings   voiceSettings `json:"voice_settings"`
	ServesProVoices bool          `json:"serves_pro_voices"`
}

// Synthesize returns MP3 audio for req.Text.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, req *speech.SynthesizeRequest) (*speech.SynthesizeResponse, error) {
	voice := req.Voice
	if strings.TrimSpace(voice) == "" {
		voice = s.opts.Voice
	}
	voice = NormalizeVoiceAlias(voice)

	body, err := sonic.Marshal(ttsRequest{
		Text:    req.Text,
		ModelID: s.opts.ModelID,
		VoiceSettings: voiceSettings{
			Stability:       s.opts.Stability,
			SimilarityBoost: s.opts.SimilarityBoost,
		},
		ServesProVoices: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode tts request")
	}

	endpoint := s.opts.BaseURL + "/text-to-speech/" + url.PathEscape(voice)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create tts request", goerr.V("voice", voice))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", s.opts.APIKey)

	resp, err := s.opts.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, &ai.UpstreamError{Details: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ai.UpstreamError{StatusCode: resp.StatusCode, Details: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ai.UpstreamError{
			StatusCode: resp.StatusCode,
			Details:    string(data),
			Err:        goerr.New("elevenlabs returned an error status", goerr.V("status", resp.StatusCode)),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return &speech.SynthesizeResponse{AudioData: data, ContentType: contentType}, nil
}
