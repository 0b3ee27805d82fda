package speech

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/model/speech"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	"github.com/zhouzirui/ai-joe/backend/pkg/utils"
)

const maxUploadBytes = 32 << 20

// SpeechService abstracts the speech backends so handlers can be tested with fakes.
type SpeechService interface {
	TranscribeAudio(ctx context.Context, req *speech.TranscribeRequest) (*speech.TranscribeResponse, error)
	SynthesizeSpeech(ctx context.Context, req *speech.SynthesizeRequest) (*speech.SynthesizeResponse, error)
	TranscriptionEnabled() bool
	SynthesisEnabled() bool
}

// Handler serves the transcription and text-to-speech endpoints.
type Handler struct {
	speechSvc SpeechService
}

// New creates the speech handler.
func New(speechSvc SpeechService) *Handler {
	return &Handler{speechSvc: speechSvc}
}

// RegisterRoutes registers the speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/generate-audio", h.handleGenerateAudio)
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())

	if !h.speechSvc.TranscriptionEnabled() {
		utils.RespondError(w, http.StatusInternalServerError, "Missing OPENAI_API_KEY")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Info("transcribe: unreadable form", "error", err)
		utils.RespondError(w, http.StatusBadRequest, "Missing 'audio' file")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Missing 'audio' file")
		return
	}
	defer file.Close()

	resp, err := h.speechSvc.TranscribeAudio(r.Context(), &speech.TranscribeRequest{
		Filename: header.Filename,
		Audio:    file,
	})
	if err != nil {
		logger.Error("transcription failed", "error", err, "filename", header.Filename, "size", header.Size)
		utils.RespondErrorDetails(w, http.StatusInternalServerError, "Transcription failed", errorDetails(err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

type generateAudioRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func (h *Handler) handleGenerateAudio(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())

	var req generateAudioRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("generate-audio: malformed body", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Text required")
		return
	}

	if !h.speechSvc.SynthesisEnabled() {
		utils.RespondError(w, http.StatusInternalServerError, "Missing ELEVENLABS_API_KEY")
		return
	}

	resp, err := h.speechSvc.SynthesizeSpeech(r.Context(), &speech.SynthesizeRequest{
		Text:  req.Text,
		Voice: req.Voice,
	})
	if err != nil {
		logger.Error("speech synthesis failed", "error", err)
		utils.RespondErrorDetails(w, http.StatusInternalServerError, "TTS failed", errorDetails(err))
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.AudioData)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.AudioData); err != nil {
		logger.Warn("failed to write audio response", "error", err)
	}
}

// errorDetails exposes upstream details when present, otherwise the error text.
func errorDetails(err error) any {
	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) && upstream.Details != nil {
		return upstream.Details
	}
	return err.Error()
}
