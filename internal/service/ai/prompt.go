package ai

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/m-mizutani/goerr/v2"

	"github.com/zhouzirui/ai-joe/backend/internal/model/chat"
)

// PromptBuilder assembles the outbound message list:
// system persona, then prior turns, then the new user turn.
type PromptBuilder struct {
	template prompt.ChatTemplate
}

// NewPromptBuilder creates the conversation chat template.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.MessagesPlaceholder("history", true),
			schema.UserMessage("{query}"),
		),
	}
}

// Build renders the message list for one request.
func (b *PromptBuilder) Build(ctx context.Context, system string, history []chat.Turn, query string) ([]*schema.Message, error) {
	messages, err := b.template.Format(ctx, map[string]any{
		"system":  system,
		"history": historyMessages(history),
		"query":   query,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to format conversation prompt")
	}
	return messages, nil
}

func historyMessages(turns []chat.Turn) []*schema.Message {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		}
	}
	return history
}
