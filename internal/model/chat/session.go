package chat

import "time"

// MemoryEntry is a fact the user asked to be remembered.
type MemoryEntry struct {
	ID        string    `json:"id"`
	Fact      string    `json:"fact"`
	Timestamp time.Time `json:"timestamp"`
}

// Session captures the conversational context for one caller-supplied key.
type Session struct {
	ID      string        `json:"id"`
	History []Turn        `json:"history"`
	Memory  []MemoryEntry `json:"memory"`
}
