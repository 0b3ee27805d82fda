package persona

import "testing"

func TestResolveDefault(t *testing.T) {
	p := Resolve("   ")
	if p.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("expected default prompt, got %q", p.SystemPrompt)
	}
	if p.Name != "AI JOE" {
		t.Fatalf("unexpected name %q", p.Name)
	}
}

func TestResolveOverride(t *testing.T) {
	p := Resolve("  You are a pirate.  ")
	if p.SystemPrompt != "You are a pirate." {
		t.Fatalf("expected trimmed override, got %q", p.SystemPrompt)
	}
}
