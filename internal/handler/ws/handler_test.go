package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/ai-joe/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/ai-joe/backend/internal/service/chat"
	"github.com/zhouzirui/ai-joe/backend/internal/service/conversation"
)

type fakeGenerator struct {
	payload string
	delay   time.Duration
}

func (f *fakeGenerator) Generate(_ context.Context, _ *ai.Request) (*ai.Reply, error) {
	time.Sleep(f.delay)
	return ai.NewReply([]byte(f.payload), http.StatusOK)
}

func dial(t *testing.T, gen ai.Generator, query string) (*websocket.Conn, *chatservice.MemoryStore) {
	t.Helper()
	return dialWithTimeout(t, gen, query, readTimeout)
}

func dialWithTimeout(t *testing.T, gen ai.Generator, query string, timeout time.Duration) (*websocket.Conn, *chatservice.MemoryStore) {
	t.Helper()

	store := chatservice.NewMemoryStore()
	svc := conversation.NewService(store, gen, conversation.Config{Model: "gpt-4o-mini", SystemPrompt: "sys"})

	h := New(svc)
	h.readTimeout = timeout

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn, store
}

func exchange(t *testing.T, conn *websocket.Conn, body string) Frame {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(body)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestWebSocketReply(t *testing.T) {
	conn, store := dial(t, &fakeGenerator{payload: `{"output_text":"hey there"}`}, "?sessionId=ws-1")

	frame := exchange(t, conn, `{"message":"hello"}`)

	assert.Equal(t, "reply", frame.Type)
	assert.Equal(t, "ws-1", frame.SessionID)
	assert.Equal(t, "hey there", frame.AssistantResponse)
	assert.Len(t, store.TrimmedHistory(context.Background(), "ws-1", 10), 2)
}

func TestWebSocketFrameSessionOverridesQuery(t *testing.T) {
	conn, store := dial(t, &fakeGenerator{payload: `{"output_text":"ok"}`}, "")

	frame := exchange(t, conn, `{"message":"hello","sessionId":"other"}`)

	assert.Equal(t, "other", frame.SessionID)
	assert.Len(t, store.TrimmedHistory(context.Background(), "other", 10), 2)
	assert.Empty(t, store.TrimmedHistory(context.Background(), conversation.DefaultSessionID, 10))
}

func TestWebSocketErrors(t *testing.T) {
	conn, _ := dial(t, &fakeGenerator{payload: `{"output_text":"ok"}`}, "")

	frame := exchange(t, conn, `{"message":"  "}`)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, http.StatusBadRequest, frame.Status)
	assert.Equal(t, "Message required", frame.Error)

	frame = exchange(t, conn, `{not json`)
	assert.Equal(t, "error", frame.Type)
	assert.Equal(t, http.StatusInternalServerError, frame.Status)
	assert.Equal(t, "Server error", frame.Error)

	// the connection stays usable after an error frame
	frame = exchange(t, conn, `{"message":"still here"}`)
	assert.Equal(t, "reply", frame.Type)
}

func TestWebSocketRememberDirective(t *testing.T) {
	conn, store := dial(t, &fakeGenerator{payload: `{"output_text":"unused"}`}, "?sessionId=mem")

	frame := exchange(t, conn, `{"message":"Remember my dog is Rex"}`)

	assert.Equal(t, conversation.RememberAck, frame.AssistantResponse)
	facts := store.Memory(context.Background(), "mem")
	require.Len(t, facts, 1)
	assert.Equal(t, "my dog is Rex", facts[0].Fact)
}

func TestWebSocketSlowReplyKeepsConnection(t *testing.T) {
	gen := &fakeGenerator{payload: `{"output_text":"slow"}`, delay: 400 * time.Millisecond}
	conn, store := dialWithTimeout(t, gen, "?sessionId=slow", 200*time.Millisecond)

	frame := exchange(t, conn, `{"message":"first"}`)
	assert.Equal(t, "reply", frame.Type)

	// the upstream call outlasted the idle window; the socket must still read
	frame = exchange(t, conn, `{"message":"second"}`)
	assert.Equal(t, "reply", frame.Type)
	assert.Len(t, store.TrimmedHistory(context.Background(), "slow", 10), 4)
}
