package conversation

import (
	"testing"

	"github.com/zhouzirui/ai-joe/backend/internal/model/chat"
)

func TestParseRemember(t *testing.T) {
	testCases := []struct {
		message string
		fact    string
		ok      bool
	}{
		{"remember my name is Ann", "my name is Ann", true},
		{"Remember   spaced   ", "spaced", true},
		{"remember", "", true},
		{"rememberthis", "this", true},
		{"remem", "", false},
		{"please remember this", "", false},
		{"héllo remember", "", false},
		{"  remember x", "", false},
	}

	for _, tc := range testCases {
		fact, ok := parseRemember(tc.message)
		if ok != tc.ok || fact != tc.fact {
			t.Fatalf("parseRemember(%q) = (%q, %v), want (%q, %v)", tc.message, fact, ok, tc.fact, tc.ok)
		}
	}
}

func TestMemoryPreface(t *testing.T) {
	if got := memoryPreface(nil); got != "" {
		t.Fatalf("expected empty preface, got %q", got)
	}

	got := memoryPreface([]chat.MemoryEntry{{Fact: "a"}, {Fact: "b"}})
	want := "The user has previously told you:\n- a\n- b\n\n"
	if got != want {
		t.Fatalf("unexpected preface %q", got)
	}
}
