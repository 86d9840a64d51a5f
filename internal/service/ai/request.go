package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
)

var requestTemplate = prompt.FromMessages(
	schema.FString,
	schema.SystemMessage("{system}"),
	schema.MessagesPlaceholder("history", true),
)

// BuildRequest assembles the outbound message list: one system message followed by
// every turn in stored order. Timestamps are not sent and nothing is truncated.
func BuildRequest(ctx context.Context, systemPrompt string, turns []chat.Turn) ([]*schema.Message, error) {
	history, err := historyMessages(turns)
	if err != nil {
		return nil, err
	}

	messages, err := requestTemplate.Format(ctx, map[string]any{
		"system":  systemPrompt,
		"history": history,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format request: %w", err)
	}
	return messages, nil
}

func historyMessages(turns []chat.Turn) ([]*schema.Message, error) {
	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(turn.Content))
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		default:
			return nil, fmt.Errorf("unsupported turn role %q", turn.Role)
		}
	}
	return history, nil
}
