package speech

import (
	"context"
	"errors"

	"github.com/zhouzirui/ai-joe/backend/internal/model/speech"
)

var (
	// ErrTranscriptionDisabled is returned when no transcription backend is configured.
	ErrTranscriptionDisabled = errors.New("transcription backend not configured")
	// ErrSynthesisDisabled is returned when no text-to-speech backend is configured.
	ErrSynthesisDisabled = errors.New("text-to-speech backend not configured")
)

// Transcriber turns audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req *speech.TranscribeRequest) (*speech.TranscribeResponse, error)
}

// Synthesizer turns text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speech.SynthesizeRequest) (*speech.SynthesizeResponse, error)
}

// Service groups the speech pass-through backends. Either may be nil.
type Service struct {
	transcriber Transcriber
	synthesizer Synthesizer
}

// NewService creates the speech service.
func NewService(transcriber Transcriber, synthesizer Synthesizer) *Service {
	return &Service{
		transcriber: transcriber,
		synthesizer: synthesizer,
	}
}

// TranscribeAudio forwards one clip to the transcription backend.
func (s *Service) TranscribeAudio(ctx context.Context, req *speech.TranscribeRequest) (*speech.TranscribeResponse, error) {
	if s.transcriber == nil {
		return nil, ErrTranscriptionDisabled
	}
	return s.transcriber.Transcribe(ctx, req)
}

// SynthesizeSpeech forwards text to the text-to-speech backend.
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.SynthesizeRequest) (*speech.SynthesizeResponse, error) {
	if s.synthesizer == nil {
		return nil, ErrSynthesisDisabled
	}
	return s.synthesizer.Synthesize(ctx, req)
}

// TranscriptionEnabled reports whether transcription is available.
func (s *Service) TranscriptionEnabled() bool {
	return s.transcriber != nil
}

// SynthesisEnabled reports whether text-to-speech is available.
func (s *Service) SynthesisEnabled() bool {
	return s.synthesizer != nil
}
