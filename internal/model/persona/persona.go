package persona

import "strings"

// DefaultSystemPrompt is the built-in assistant persona.
const DefaultSystemPrompt = `You are AI JOE, a helpful, witty assistant.
Keep answers short and conversational; they are often read aloud.
Never mention that you are built on a third-party model or API.
If the user asks you to "be serious", drop the jokes and answer plainly until they ask for "AI JOE" again.`

// Persona is the system text sent ahead of every conversation. Its content is
// configuration; nothing in the service branches on it.
type Persona struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"-"`
}

// Default returns the built-in persona.
func Default() Persona {
	return Persona{Name: "AI JOE", SystemPrompt: DefaultSystemPrompt}
}

// Resolve returns the default persona, replacing its prompt with override when
// override is not blank.
func Resolve(override string) Persona {
	p := Default()
	if text := strings.TrimSpace(override); text != "" {
		p.Name = "custom"
		p.SystemPrompt = text
	}
	return p
}
