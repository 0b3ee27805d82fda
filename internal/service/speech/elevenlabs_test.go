package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/zhouzirui/ai-joe/backend/internal/model/speech"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
)

func TestNewElevenLabsSynthesizerRequiresKey(t *testing.T) {
	_, err := NewElevenLabsSynthesizer(ElevenLabsOptions{APIKey: "  "})
	require.Error(t, err)
}

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotKey, gotAccept string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		gotAccept = r.Header.Get("Accept")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	synth, err := NewElevenLabsSynthesizer(ElevenLabsOptions{
		APIKey:          "xi-key",
		BaseURL:         srv.URL + "/v1/",
		Voice:           "Rachel",
		ModelID:         "eleven_multilingual_v2",
		Stability:       0.34,
		SimilarityBoost: 0.8,
	})
	require.NoError(t, err)

	resp, err := synth.Synthesize(context.Background(), &speech.SynthesizeRequest{Text: "hello there"})
	require.NoError(t, err)

	assert.Equal(t, "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM", gotPath)
	assert.Equal(t, "xi-key", gotKey)
	assert.Equal(t, "audio/mpeg", gotAccept)
	assert.Equal(t, "hello there", gjson.GetBytes(gotBody, "text").String())
	assert.Equal(t, "eleven_multilingual_v2", gjson.GetBytes(gotBody, "model_id").String())
	assert.InDelta(t, 0.34, gjson.GetBytes(gotBody, "voice_settings.stability").Float(), 1e-9)
	assert.InDelta(t, 0.8, gjson.GetBytes(gotBody, "voice_settings.similarity_boost").Float(), 1e-9)
	assert.True(t, gjson.GetBytes(gotBody, "serves_pro_voices").Bool())

	assert.Equal(t, []byte("ID3mp3"), resp.AudioData)
	assert.Equal(t, "audio/mpeg", resp.ContentType)
}

func TestElevenLabsSynthesizeRequestVoiceOverrides(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	synth, err := NewElevenLabsSynthesizer(ElevenLabsOptions{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), &speech.SynthesizeRequest{Text: "hi", Voice: "adam"})
	require.NoError(t, err)
	assert.Equal(t, "/text-to-speech/pNInz6obpgDQGcFmaJgB", gotPath)
}

func TestElevenLabsSynthesizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	synth, err := NewElevenLabsSynthesizer(ElevenLabsOptions{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = synth.Synthesize(context.Background(), &speech.SynthesizeRequest{Text: "hi"})
	require.Error(t, err)

	var upstream *ai.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Details, "invalid api key")
}
