package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/ai-joe/backend/internal/model/chat"
)

const (
	DefaultMaxTurns    = 24
	DefaultMaxMemories = 100
)

// Store owns every conversation session of the process.
type Store interface {
	GetOrCreate(ctx context.Context, sessionID string) chat.Session
	AppendMemory(ctx context.Context, sessionID, fact string, at time.Time) chat.MemoryEntry
	AppendTurn(ctx context.Context, sessionID string, role chat.Role, content string)
	AppendExchange(ctx context.Context, sessionID, userContent, assistantContent string)
	TrimmedHistory(ctx context.Context, sessionID string, limit int) []chat.Turn
	Memory(ctx context.Context, sessionID string) []chat.MemoryEntry
}

// Option customizes a MemoryStore.
type Option func(*MemoryStore)

// WithMaxTurns bounds the history kept per session.
func WithMaxTurns(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxTurns = n
		}
	}
}

// WithMaxMemories bounds the remembered facts kept per session.
func WithMaxMemories(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxMemories = n
		}
	}
}

type sessionState struct {
	mu      sync.Mutex
	history []chat.Turn
	memory  []chat.MemoryEntry
}

// MemoryStore keeps sessions in process memory for the lifetime of the process.
// Each session has its own lock, so operations on one session are atomic and
// different sessions never contend.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*sessionState
	maxTurns    int
	maxMemories int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]*sessionState),
		maxTurns:    DefaultMaxTurns,
		maxMemories: DefaultMaxMemories,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxTurns reports the history bound.
func (s *MemoryStore) MaxTurns() int {
	return s.maxTurns
}

func (s *MemoryStore) session(sessionID string) *sessionState {
	s.mu.RLock()
	state, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok = s.sessions[sessionID]; ok {
		return state
	}
	state = &sessionState{
		history: make([]chat.Turn, 0, 8),
	}
	s.sessions[sessionID] = state
	return state
}

// GetOrCreate returns a snapshot of the session, creating an empty one on first use.
func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID string) chat.Session {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	return chat.Session{
		ID:      sessionID,
		History: append([]chat.Turn(nil), state.history...),
		Memory:  append([]chat.MemoryEntry(nil), state.memory...),
	}
}

// AppendMemory records a fact. Timestamps within a session are strictly
// increasing, so repeated identical facts remain distinguishable.
func (s *MemoryStore) AppendMemory(_ context.Context, sessionID, fact string, at time.Time) chat.MemoryEntry {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	if n := len(state.memory); n > 0 {
		if last := state.memory[n-1].Timestamp; !at.After(last) {
			at = last.Add(time.Nanosecond)
		}
	}

	entry := chat.MemoryEntry{
		ID:        uuid.NewString(),
		Fact:      fact,
		Timestamp: at,
	}
	state.memory = keepLast(append(state.memory, entry), s.maxMemories)
	return entry
}

// AppendTurn records one turn.
func (s *MemoryStore) AppendTurn(_ context.Context, sessionID string, role chat.Role, content string) {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	state.history = keepLast(append(state.history, chat.Turn{Role: role, Content: content}), s.maxTurns)
}

// AppendExchange records a user turn and its reply under one lock.
func (s *MemoryStore) AppendExchange(_ context.Context, sessionID, userContent, assistantContent string) {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	state.history = append(state.history,
		chat.Turn{Role: chat.RoleUser, Content: userContent},
		chat.Turn{Role: chat.RoleAssistant, Content: assistantContent},
	)
	state.history = keepLast(state.history, s.maxTurns)
}

// TrimmedHistory returns a copy of the most recent limit turns, oldest first.
func (s *MemoryStore) TrimmedHistory(_ context.Context, sessionID string, limit int) []chat.Turn {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	if limit <= 0 || len(state.history) == 0 {
		return nil
	}

	start := 0
	if len(state.history) > limit {
		start = len(state.history) - limit
	}
	return append([]chat.Turn(nil), state.history[start:]...)
}

// Memory returns a copy of the remembered facts, oldest first.
func (s *MemoryStore) Memory(_ context.Context, sessionID string) []chat.MemoryEntry {
	state := s.session(sessionID)

	state.mu.Lock()
	defer state.mu.Unlock()

	return append([]chat.MemoryEntry(nil), state.memory...)
}

// keepLast drops the oldest items so at most limit remain. The result never
// aliases the evicted prefix, letting the old backing array be collected.
func keepLast[T any](items []T, limit int) []T {
	if len(items) <= limit {
		return items
	}
	return append(make([]T, 0, limit), items[len(items)-limit:]...)
}
