package speech

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/zhouzirui/ai-joe/backend/internal/model/speech"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
)

const defaultUploadName = "audio.webm"

// OpenAITranscriber sends audio to the OpenAI transcription endpoint.
type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

// NewOpenAITranscriber creates a transcriber. Retries are disabled.
func NewOpenAITranscriber(apiKey, baseURL, model string) (*OpenAITranscriber, error) {
	key, err := resolveAPIKey(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "whisper-1"
	}

	client := openai.NewClient(opts...)
	return &OpenAITranscriber{client: &client, model: model}, nil
}

// Transcribe uploads the clip and returns its text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, req *speech.TranscribeRequest) (*speech.TranscribeResponse, error) {
	filename := req.Filename
	if filename == "" {
		filename = defaultUploadName
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(req.Audio, filename, "application/octet-stream"),
		Model: openai.AudioModel(t.model),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ai.UpstreamError{
				StatusCode: apiErr.StatusCode,
				Details:    ai.DecodeDetails(apiErr.RawJSON()),
				Err:        err,
			}
		}
		return nil, &ai.UpstreamError{Details: err.Error(), Err: err}
	}

	return &speech.TranscribeResponse{Text: resp.Text}, nil
}
