package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/ai-joe/backend/internal/service/chat"
)

// DefaultSessionID is used when the caller does not name a session.
const DefaultSessionID = "default"

// Config holds the per-process conversation settings.
type Config struct {
	Model         string
	SystemPrompt  string
	VectorStoreID string
	WebSearch     bool
	MaxTurns      int
}

// Request is one inbound chat message.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Debug     bool   `json:"debug"`
}

// DebugInfo describes how a reply was produced.
type DebugInfo struct {
	VectorStoreUsed bool   `json:"vectorStoreUsed"`
	VectorStoreID   string `json:"vectorStoreId,omitempty"`
	Model           string `json:"model"`
	ResponseID      string `json:"responseId,omitempty"`
}

// Response is the reply returned to the caller.
type Response struct {
	AssistantResponse string     `json:"assistantResponse"`
	Debug             *DebugInfo `json:"debug,omitempty"`
}

// Service turns a message into a reply, keeping per-session history and
// remembered facts in the store.
type Service struct {
	store     chatservice.Store
	generator ai.Generator
	prompts   *ai.PromptBuilder
	cfg       Config
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for memory timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the orchestrator. generator may be nil when no backend is
// configured; Send then fails with ErrNotConfigured.
func NewService(store chatservice.Store, generator ai.Generator, cfg Config, opts ...Option) *Service {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = chatservice.DefaultMaxTurns
	}

	s := &Service{
		store:     store,
		generator: generator,
		prompts:   ai.NewPromptBuilder(),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a text-generation backend is configured.
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Send handles one message. A caller going away does not cancel the upstream
// call or the store update.
func (s *Service) Send(ctx context.Context, req Request) (*Response, error) {
	ctx = context.WithoutCancel(ctx)

	if s.generator == nil {
		return nil, ErrNotConfigured
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrMessageRequired
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	// Leading whitespace means the message is not a directive.
	if fact, ok := parseRemember(req.Message); ok {
		return s.remember(ctx, sessionID, fact), nil
	}

	return s.generate(ctx, sessionID, message, req.Debug)
}

func (s *Service) remember(ctx context.Context, sessionID, fact string) *Response {
	if fact == "" {
		return &Response{AssistantResponse: RememberPrompt}
	}

	entry := s.store.AppendMemory(ctx, sessionID, fact, s.now())
	logging.From(ctx).Info("remembered fact", "session_id", sessionID, "memory_id", entry.ID)
	return &Response{AssistantResponse: RememberAck}
}

func (s *Service) generate(ctx context.Context, sessionID, message string, debug bool) (*Response, error) {
	logger := logging.From(ctx).With("session_id", sessionID)

	preface := memoryPreface(s.store.Memory(ctx, sessionID))
	history := s.store.TrimmedHistory(ctx, sessionID, s.cfg.MaxTurns)

	messages, err := s.prompts.Build(ctx, s.cfg.SystemPrompt, history, preface+message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("session_id", sessionID))
	}

	reply, err := s.generator.Generate(ctx, &ai.Request{
		Model:    s.cfg.Model,
		Messages: messages,
		Tools:    s.tools(),
	})
	if err != nil {
		logger.Warn("text generation failed", "error", err)
		return nil, goerr.Wrap(err, "text generation failed", goerr.V("session_id", sessionID))
	}

	text := reply.Text()
	if text == ai.Placeholder {
		logger.Warn("no reply text found in upstream payload", "response_id", reply.ID())
	}

	// History keeps the trimmed message, without the memory preface.
	s.store.AppendExchange(ctx, sessionID, message, text)
	logger.Debug("generated reply", "history", len(history)+2, "length", len(text))

	resp := &Response{AssistantResponse: text}
	if debug {
		resp.Debug = &DebugInfo{
			VectorStoreUsed: s.cfg.VectorStoreID != "",
			VectorStoreID:   s.cfg.VectorStoreID,
			Model:           s.cfg.Model,
			ResponseID:      reply.ID(),
		}
	}
	return resp, nil
}

// tools returns the tool descriptors for a generation call: file search when a
// vector store is configured, web search when enabled.
func (s *Service) tools() []ai.Tool {
	var tools []ai.Tool
	if s.cfg.VectorStoreID != "" {
		tools = append(tools, ai.FileSearchTool(s.cfg.VectorStoreID))
	}
	if s.cfg.WebSearch {
		tools = append(tools, ai.WebSearchTool())
	}
	return tools
}
