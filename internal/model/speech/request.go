package speech

import "io"

// TranscribeRequest carries one uploaded audio clip.
type TranscribeRequest struct {
	Filename string    `json:"filename"`
	Audio    io.Reader `json:"-"`
}

// SynthesizeRequest is the text-to-speech input.
type SynthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"` // overrides the configured voice
}
