package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/ai-joe/backend/internal/handler/chat"
	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
	maxFrameSize = 1 << 20
)

// Frame is one outbound websocket message.
type Frame struct {
	Type              string                  `json:"type"`
	SessionID         string                  `json:"sessionId,omitempty"`
	AssistantResponse string                  `json:"assistantResponse,omitempty"`
	Debug             *conversation.DebugInfo `json:"debug,omitempty"`
	Status            int                     `json:"status,omitempty"`
	Error             string                  `json:"error,omitempty"`
	Details           any                     `json:"details,omitempty"`
}

// Handler runs chat messages received over a websocket through the same
// orchestrator as the HTTP endpoint. Each inbound frame gets one whole reply.
type Handler struct {
	sender      chat.Sender
	upgrader    websocket.Upgrader
	readTimeout time.Duration
}

// New creates the websocket handler.
func New(sender chat.Sender) *Handler {
	return &Handler{
		sender:      sender,
		readTimeout: readTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type connection struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	sessionID string
	writeMu   sync.Mutex
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("sessionId"))
	if sessionID == "" {
		sessionID = conversation.DefaultSessionID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.From(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &connection{
		conn:      conn,
		sessionID: sessionID,
		logger: logging.From(r.Context()).With(
			"conn_id", uuid.NewString(),
			"session_id", sessionID,
		),
	}
	c.logger.Info("websocket connected")
	defer c.logger.Info("websocket closed")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ctx = logging.With(ctx, c.logger)

	conn.SetReadLimit(maxFrameSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	go c.pingLoop(ctx)

	for {
		// The idle window starts after the previous reply, so a slow upstream
		// call does not eat into it.
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		if msgType != websocket.TextMessage {
			c.write(Frame{Type: "error", Status: http.StatusBadRequest, Error: "Text frames only"})
			continue
		}

		c.write(h.handleFrame(ctx, c, data))
	}
}

func (h *Handler) handleFrame(ctx context.Context, c *connection, data []byte) Frame {
	req, err := chat.ParseRequest(data)
	if err != nil {
		c.logger.Warn("malformed websocket frame", "error", err)
		return Frame{Type: "error", Status: http.StatusInternalServerError, Error: "Server error"}
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = c.sessionID
	}

	resp, err := h.sender.Send(ctx, req)
	if err != nil {
		status, payload := chat.MapError(err)
		c.logger.Info("websocket message failed", "status", status, "error", err)
		return Frame{Type: "error", Status: status, Error: payload.Error, Details: payload.Details}
	}

	return Frame{
		Type:              "reply",
		SessionID:         strings.TrimSpace(req.SessionID),
		AssistantResponse: resp.AssistantResponse,
		Debug:             resp.Debug,
	}
}

func (c *connection) write(frame Frame) {
	data, err := sonic.Marshal(frame)
	if err != nil {
		c.logger.Error("failed to encode websocket frame", "error", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Warn("websocket write failed", "error", err)
	}
}

func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
