package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/zhouzirui/ai-joe/backend/internal/logging"
	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/ai-joe/backend/internal/service/chat"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
	speechservice "github.com/zhouzirui/ai-joe/backend/internal/service/speech"
)

type fakeGenerator struct{}

func (fakeGenerator) Generate(context.Context, *ai.Request) (*ai.Reply, error) {
	return ai.NewReply([]byte(`{"output_text":"hi from joe"}`), http.StatusOK)
}

func newTestRouter(gen ai.Generator) http.Handler {
	svc := conversation.NewService(chatservice.NewMemoryStore(), gen, conversation.Config{Model: "m", SystemPrompt: "s"})
	return NewRouter(Dependencies{
		Chat:        svc,
		Speech:      speechservice.NewService(nil, nil),
		Provider:    "openai",
		AllowOrigin: "*",
		Logger:      logging.New("error", io.Discard),
	})
}

func TestRouterSendMessage(t *testing.T) {
	r := newTestRouter(fakeGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hello"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "hi from joe", gjson.Get(rr.Body.String(), "assistantResponse").String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(fakeGenerator{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(method, "/api/send-message", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rr.Body.String())
	}
}

func TestRouterPreflight(t *testing.T) {
	r := newTestRouter(fakeGenerator{})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/send-message", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy","provider":"openai","speech":false}`, rr.Body.String())
}

func TestRouterNotConfigured(t *testing.T) {
	r := newTestRouter(nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/send-message", strings.NewReader(`{"message":"hi"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Missing OPENAI_API_KEY"}`, rr.Body.String())
}
