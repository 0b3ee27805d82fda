package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/tidwall/gjson"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
	"github.com/zhouzirui/ai-joe/backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// Sender produces a reply for one chat message.
type Sender interface {
	Send(ctx context.Context, req conversation.Request) (*conversation.Response, error)
}

// Handler serves the text-chat endpoint.
type Handler struct {
	sender Sender
}

// New creates the chat handler.
func New(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send-message", h.handleSendMessage)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logging.From(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Warn("failed to read request body", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		logger.Warn("malformed request body", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "Server error")
		return
	}

	resp, err := h.sender.Send(r.Context(), req)
	if err != nil {
		status, payload := MapError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("send-message failed", "status", status, "error", err)
		} else {
			logger.Info("send-message rejected", "status", status, "error", err)
		}
		utils.RespondJSON(w, status, payload)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// ParseRequest decodes a chat request. The body may be a JSON object or a JSON
// string holding one. An empty or null body reads as {}, and a message that is
// not a string is treated as missing.
func ParseRequest(body []byte) (conversation.Request, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return conversation.Request{}, nil
	}
	if !gjson.ValidBytes(body) {
		return conversation.Request{}, goerr.New("request body is not valid JSON")
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Type == gjson.String {
		inner := parsed.String()
		if !gjson.Valid(inner) {
			return conversation.Request{}, goerr.New("encoded request body is not valid JSON")
		}
		parsed = gjson.Parse(inner)
	}
	if parsed.Type == gjson.Null {
		return conversation.Request{}, nil
	}

	if !parsed.IsObject() {
		return conversation.Request{}, goerr.New("request body is not an object", goerr.V("type", parsed.Type.String()))
	}

	var req conversation.Request
	if msg := parsed.Get("message"); msg.Type == gjson.String {
		req.Message = msg.String()
	}
	if sid := parsed.Get("sessionId"); sid.Type == gjson.String {
		req.SessionID = sid.String()
	}
	req.Debug = parsed.Get("debug").Bool()
	return req, nil
}

// MapError converts an orchestrator error into an HTTP status and body.
func MapError(err error) (int, utils.ErrorResponse) {
	var upstream *ai.UpstreamError
	switch {
	case errors.Is(err, conversation.ErrMessageRequired):
		return http.StatusBadRequest, utils.ErrorResponse{Error: "Message required"}
	case errors.Is(err, conversation.ErrNotConfigured):
		return http.StatusInternalServerError, utils.ErrorResponse{Error: "Missing OPENAI_API_KEY"}
	case errors.As(err, &upstream):
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		return status, utils.ErrorResponse{Error: "OpenAI request failed", Details: upstream.Details}
	default:
		return http.StatusInternalServerError, utils.ErrorResponse{Error: "Server error"}
	}
}
