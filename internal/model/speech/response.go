package speech

// TranscribeResponse is returned to the caller after transcription.
type TranscribeResponse struct {
	Text string `json:"text"`
}

// SynthesizeResponse holds the synthesized audio.
type SynthesizeResponse struct {
	AudioData   []byte `json:"-"`
	ContentType string `json:"contentType"`
}
