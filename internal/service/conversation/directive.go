package conversation

import (
	"strings"

	"github.com/zhouzirui/ai-joe/backend/internal/model/chat"
)

const (
	rememberPrefix = "remember"

	// RememberAck acknowledges a stored fact.
	RememberAck = "🧠 Got it. I'll remember that."
	// RememberPrompt asks for the fact when "remember" came without one.
	RememberPrompt = "🧠 Tell me what to remember, e.g. \"remember my dog is called Rex\"."

	memoryPrefaceIntro = "The user has previously told you:\n"
)

// parseRemember reports whether message is a remember directive and returns
// the fact that follows the prefix. The match is case-insensitive and, like
// the prefix itself, does not require a word boundary.
func parseRemember(message string) (string, bool) {
	if len(message) < len(rememberPrefix) || !strings.EqualFold(message[:len(rememberPrefix)], rememberPrefix) {
		return "", false
	}
	return strings.TrimSpace(message[len(rememberPrefix):]), true
}

// memoryPreface renders remembered facts as a bulleted list, or "" when there
// are none.
func memoryPreface(entries []chat.MemoryEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(memoryPrefaceIntro)
	for _, entry := range entries {
		b.WriteString("- ")
		b.WriteString(entry.Fact)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
